package cmdutil

import "github.com/spf13/pflag"

// PersistentFlags defines the credential flags for environments
func PersistentFlags(flags *pflag.FlagSet) {
	flags.String("kraken-api-key", "", "kraken api key")
	flags.String("kraken-api-secret", "", "kraken api secret")
}
