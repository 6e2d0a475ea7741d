package review

import (
	"fmt"
	"os"

	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/auth"
	"github.com/jasonrodrigues28/product-landing-page/lib/review"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var (
	addCmd = &cobra.Command{
		Use:   "add [productID]",
		Short: "Writes a review as the logged in user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.Login(cmd, auth.RequireAuth)
			if err != nil {
				return err
			}

			rating, _ := cmd.Flags().GetInt("rating")
			title, _ := cmd.Flags().GetString("title")
			comment, _ := cmd.Flags().GetString("comment")
			r, err := book.Add(session, args[0], review.Draft{Rating: rating, Title: title, Comment: comment})
			if err != nil {
				return err
			}
			fmt.Println(r.ID)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [productID]",
		Short: "Lists the reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := book.List(args[0])
			if err != nil {
				return err
			}
			avg, err := book.AverageRating(args[0])
			if err != nil {
				return err
			}

			tbl := table.New("ID", "Rating", "User", "Title", "Helpful", "Date").WithWriter(os.Stdout)
			tbl.WithPadding(2)
			for _, r := range list {
				date := r.Date.Format("2006-01-02")
				if r.Edited {
					date += " (edited)"
				}
				tbl.AddRow(r.ID, r.Rating, r.Username, r.Title, fmt.Sprintf("%d/%d", r.Helpful, r.NotHelpful), date)
			}
			tbl.Print()
			fmt.Printf("\n%d reviews, average rating %.1f\n", len(list), avg)
			return nil
		},
	}
)

func init() {
	addCmd.Flags().Int("rating", 5, "Rating from 1 to 5")
	addCmd.Flags().String("title", "", "Review title")
	addCmd.Flags().String("comment", "", "Review text")
	util.SetupLoginFlags(addCmd, auth.RoleBuyer)
}
