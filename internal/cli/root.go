// Package cli implements fitzdoctl, the command-line entry point for running
// the catalog server, seeding stores and querying a running API.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// defaultAPIURL is used when neither --api-url nor FITZDO_API_URL is set.
const defaultAPIURL = "http://localhost:8001"

type rootOptions struct {
	logLevel string
	apiURL   string

	// environment overrides os.Environ when non-nil.
	environment map[string]string
}

// NewRootCommand builds the fitzdoctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

func newRootCommand(environment map[string]string) *cobra.Command {
	opts := &rootOptions{environment: environment}

	root := &cobra.Command{
		Use:           "fitzdoctl",
		Short:         "Run and query the Fitzdo storefront catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	apiURL := opts.lookupEnv("FITZDO_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.lookupEnv("LOG_LEVEL"), "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL, "base URL of a running catalog API")

	root.AddCommand(
		newServeCommand(opts),
		newSeedCommand(opts),
		newProductsCommand(opts),
	)
	return root
}

// Execute runs fitzdoctl with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *rootOptions) env() map[string]string {
	if o.environment != nil {
		out := make(map[string]string, len(o.environment))
		for k, v := range o.environment {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

func (o *rootOptions) lookupEnv(key string) string {
	if o.environment != nil {
		return o.environment[key]
	}
	return os.Getenv(key)
}
