package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luminacrm/lumina/internal/cache"
	"github.com/luminacrm/lumina/internal/filter"
	"github.com/luminacrm/lumina/internal/infra/integration/leadapi"
	"github.com/luminacrm/lumina/internal/usecase"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "luminactl",
		Short: "Command line client for the Lumina CRM lead API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/luminactl/config.yaml)")
	root.PersistentFlags().String("api-url", "", "lead API base URL")
	viper.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLeadsCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newViewsCmd())

	return root
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "luminactl")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LUMINA")

	viper.SetDefault("api_url", "http://localhost:8080/api")
	viper.SetDefault("author", "Admin")

	viper.ReadInConfig()
}

func configDir() string {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	return filepath.Join(home, ".config", "luminactl")
}

func tokenPath() string {
	return filepath.Join(configDir(), "token")
}

func viewsPath() string {
	return filepath.Join(configDir(), "views.yaml")
}

// lastDeletedPath holds the most recently deleted lead so
// "leads restore" can undo the delete.
func lastDeletedPath() string {
	return filepath.Join(configDir(), "last-deleted.yaml")
}

// newClient builds an API client with the saved session token, if any.
func newClient() *leadapi.Client {
	client := leadapi.NewClient(viper.GetString("api_url"))
	if raw, err := os.ReadFile(tokenPath()); err == nil {
		client.SetToken(strings.TrimSpace(string(raw)))
	}
	return client
}

// newPipeline loads the lead cache and wires the mutation pipeline on
// top of it. Every lead command goes through this.
func newPipeline(ctx context.Context) (*usecase.LeadPipeline, *cache.Store, error) {
	client := newClient()
	store := cache.NewStore(client)
	if err := store.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("load leads: %w", err)
	}
	pipeline := usecase.NewLeadPipeline(client, store, stderrNotifier{}, viper.GetString("author"))
	return pipeline, store, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// stderrNotifier prints toasts and notifications where a UI would show
// them, keeping stdout clean for machine-readable output.
type stderrNotifier struct{}

func (stderrNotifier) Toast(msg string, level usecase.Level) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", level, msg)
}

func (stderrNotifier) Notify(title, msg string, level usecase.Level) {
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", level, title, msg)
}

// resolveRules turns --view and repeated --rule flags into filter rules.
func resolveRules(viewName string, ruleSpecs []string) ([]filter.Rule, error) {
	var rules []filter.Rule

	if viewName != "" {
		store := filter.NewViewStore(viewsPath())
		view, err := store.Find(viewName)
		if err != nil {
			return nil, err
		}
		rules = append(rules, view.Rules...)
	}

	for _, spec := range ruleSpecs {
		rule, err := parseRuleSpec(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// parseRuleSpec parses "field:operator:value", e.g. "status:equals:New"
// or "value:gt:5000".
func parseRuleSpec(spec string) (filter.Rule, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return filter.Rule{}, fmt.Errorf("invalid rule %q, want field:operator:value", spec)
	}

	field, ok := filter.FieldByName(parts[0])
	if !ok {
		return filter.Rule{}, fmt.Errorf("unknown field %q", parts[0])
	}

	rule := filter.NewRule()
	rule.SetField(parts[0])

	op := filter.Operator(parts[1])
	valid := false
	for _, candidate := range filter.OperatorsFor(field.Type) {
		if candidate == op {
			valid = true
			break
		}
	}
	if !valid {
		return filter.Rule{}, fmt.Errorf("operator %q not valid for field %q", parts[1], parts[0])
	}
	rule.Operator = op
	rule.Value = parts[2]
	return rule, nil
}
