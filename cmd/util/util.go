package util

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jasonrodrigues28/product-landing-page/lib/auth"
	"github.com/jasonrodrigues28/product-landing-page/lib/cart"
	"github.com/jasonrodrigues28/product-landing-page/lib/catalog"
	"github.com/jasonrodrigues28/product-landing-page/lib/common"
	"github.com/jasonrodrigues28/product-landing-page/lib/idalloc"
	"github.com/jasonrodrigues28/product-landing-page/lib/serializer"
	"github.com/jasonrodrigues28/product-landing-page/lib/store"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/fstore"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/lstore"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/pgstore"
	"github.com/jasonrodrigues28/product-landing-page/lib/store/sqlstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the persistence and logging flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "store"
	cmd.PersistentFlags().String(key, "file", WrapString("Persistence backend (memory, file, sqlite, postgres)"))

	key = "serializer"
	cmd.PersistentFlags().String(key, "json", WrapString("Encoding of the id allocator state (json, gob, binary)"))

	key = "data-dir"
	cmd.PersistentFlags().String(key, "data", WrapString("Directory of the file and sqlite databases"))

	key = "dsn"
	cmd.PersistentFlags().String(key, "", WrapString("Postgres connection string (only for --store=postgres)"))

	key = "credentials"
	cmd.PersistentFlags().String(key, "credentials.yaml", WrapString("YAML file with the accounts allowed to log in"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("storefront")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the storefront configuration from viper
func GetConfig() (*common.Config, error) {
	kind, err := common.ParseStoreKind(viper.GetString("store"))
	if err != nil {
		return nil, err
	}
	return &common.Config{
		Store:           kind,
		Serializer:      viper.GetString("serializer"),
		DataDir:         viper.GetString("data-dir"),
		DSN:             viper.GetString("dsn"),
		CredentialsFile: viper.GetString("credentials"),
		LogLevel:        viper.GetString("log-level"),
	}, nil
}

// StoreFactory returns the factory of the backend selected by conf
func StoreFactory(conf *common.Config) store.Factory {
	return func() (store.IStore, error) {
		switch conf.Store {
		case common.StoreMemory:
			return lstore.NewLocalStore(), nil
		case common.StoreFile:
			return fstore.NewFileStore(filepath.Join(conf.DataDir, "storefront.json"), nil)
		case common.StoreSQLite:
			return sqlstore.NewSQLiteStore(filepath.Join(conf.DataDir, "storefront.db"))
		case common.StorePostgres:
			return pgstore.NewPostgresStore(conf.DSN, nil)
		default:
			return nil, fmt.Errorf("invalid store %s", conf.Store)
		}
	}
}

// OpenStore opens the backend selected by conf
func OpenStore(conf *common.Config) (store.IStore, error) {
	return StoreFactory(conf)()
}

// --------------------------------------------------------------------------
// Command environment
// --------------------------------------------------------------------------

// Env bundles everything a command needs. It is created by Setup and released
// by Teardown.
type Env struct {
	Config    *common.Config
	Store     store.IStore
	States    *idalloc.KVStateStore
	Allocator *idalloc.Allocator
}

// Setup binds the flags of cmd, configures logging and opens the store.
func Setup(cmd *cobra.Command) (*Env, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}

	conf, err := GetConfig()
	if err != nil {
		return nil, err
	}
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}

	s, err := serializer.New(conf.Serializer)
	if err != nil {
		return nil, err
	}

	kv, err := OpenStore(conf)
	if err != nil {
		return nil, err
	}

	states := idalloc.NewKVStateStore(kv, s, "")
	return &Env{
		Config:    conf,
		Store:     kv,
		States:    states,
		Allocator: idalloc.New(states),
	}, nil
}

// Teardown closes the store of env. A nil env is ignored.
func (env *Env) Teardown() error {
	if env == nil || env.Store == nil {
		return nil
	}
	return env.Store.Close()
}

// OpenCatalog loads the catalog and registers the hook that removes deleted
// products from all carts.
func (env *Env) OpenCatalog() (*catalog.Catalog, error) {
	products, err := catalog.New(env.Store, env.Allocator)
	if err != nil {
		return nil, err
	}
	products.OnDelete(func(ids []string) error {
		_, err := cart.DropProducts(env.Store, ids)
		return err
	})
	return products, nil
}

// SetupLoginFlags adds the flags read by Login to a command
func SetupLoginFlags(cmd *cobra.Command, defaultRole auth.Role) {
	cmd.Flags().String("username", "", "Account to log in with")
	cmd.Flags().String("password", "", WrapString("Password of the account (or STOREFRONT_PASSWORD)"))
	cmd.Flags().String("role", string(defaultRole), "Role to log in as")
}

// Login authenticates against the configured credential file and checks the
// session with guard (e.g. auth.RequireBuyer).
func (env *Env) Login(cmd *cobra.Command, guard func(auth.Session, string) error) (auth.Session, error) {
	creds, err := auth.LoadCredentials(env.Config.CredentialsFile)
	if err != nil {
		return auth.Session{}, err
	}
	role, err := auth.ParseRole(viper.GetString("role"))
	if err != nil {
		return auth.Session{}, err
	}
	session, err := auth.NewAuthenticator(creds).Login(viper.GetString("username"), viper.GetString("password"), role)
	if err != nil {
		return auth.Session{}, err
	}
	if err := guard(session, cmd.CommandPath()); err != nil {
		return auth.Session{}, err
	}
	return session, nil
}
