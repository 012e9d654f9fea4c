package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var dev bool
	root := &cobra.Command{
		Use:          "tryrwstress",
		Short:        "Contention probe for the non-blocking RW lock",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&dev, "dev", false, "human-readable development logging")

	newLogger := func() (*zap.Logger, error) {
		if dev {
			return zap.NewDevelopment()
		}
		return zap.NewProduction()
	}
	root.AddCommand(newRunCmd(newLogger))
	return root
}
