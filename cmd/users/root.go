package users

import (
	"fmt"
	"os"

	"github.com/jasonrodrigues28/product-landing-page/cmd/util"
	"github.com/jasonrodrigues28/product-landing-page/lib/auth"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

var (
	env       *util.Env
	directory *auth.Directory

	// UserCommands represents the user directory command group
	UserCommands = &cobra.Command{
		Use:                "users",
		Short:              "Administer the user directory",
		PersistentPreRunE:  setupDirectory,
		PersistentPostRunE: teardownDirectory,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := table.New("ID", "Username", "Email", "Role").WithWriter(os.Stdout)
			tbl.WithPadding(2)
			for _, u := range directory.List() {
				tbl.AddRow(u.ID, u.Username, u.Email, u.Role)
			}
			tbl.Print()
			return nil
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [username] [email] [role]",
		Short: "Registers a user and prints its id",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := directory.Add(auth.User{Username: args[0], Email: args[1], Role: auth.Role(args[2])})
			if err != nil {
				return err
			}
			fmt.Println(u.ID)
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id]",
		Short: "Removes a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := directory.Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("user %s not found", args[0])
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Registers every account of the credential file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := auth.LoadCredentials(env.Config.CredentialsFile)
			if err != nil {
				return err
			}
			added, err := directory.SyncFromCredentials(creds)
			if err != nil {
				return err
			}
			fmt.Printf("added %d users\n", added)
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	UserCommands.AddCommand(listCmd)
	UserCommands.AddCommand(addCmd)
	UserCommands.AddCommand(deleteCmd)
	UserCommands.AddCommand(syncCmd)
}

func setupDirectory(cmd *cobra.Command, _ []string) (err error) {
	env, err = util.Setup(cmd)
	if err != nil {
		return err
	}
	directory, err = auth.OpenDirectory(env.Store)
	return err
}

func teardownDirectory(*cobra.Command, []string) error {
	return env.Teardown()
}
