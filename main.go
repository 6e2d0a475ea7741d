package main

import "github.com/jasonrodrigues28/product-landing-page/cmd"

func main() {
	cmd.Execute()
}
