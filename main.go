package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cli "github.com/shaanrockz/sharenet/cmd"
)

func main() {
	command := &cobra.Command{
		Use: "sharenode",
	}
	addNodeCmd(command)
	addProviderCmd(command)

	err := command.Execute()
	if err != nil {
		panic(err)
	}
}

// addNodeCmd starts a party node with an interactive prompt
func addNodeCmd(command *cobra.Command) {
	var port int
	var peers []string
	var providerAddr string

	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Start a party node with interactive CLI",
		Long:  "Start a party node, join the given party set and perform share operations interactively",
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
			cli.StartNodeCMD(port, peers, providerAddr)
		},
	}

	nodeCmd.Flags().IntVarP(&port, "port", "p", 0, "Start node on a customized port")
	nodeCmd.Flags().StringSliceVar(&peers, "peers", nil, "Addresses of the full party set, own address included")
	nodeCmd.Flags().StringVar(&providerAddr, "provider", "", "Address of the crypto provider")

	command.AddCommand(nodeCmd)
}

// addProviderCmd starts a crypto provider daemon
func addProviderCmd(command *cobra.Command) {
	var port int
	var peers []string

	providerCmd := &cobra.Command{
		Use:   "provider",
		Short: "Start a crypto provider",
		Long:  "Start a crypto provider serving multiplication triples and bit-shared randomness to the party set",
		Args:  cobra.MinimumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cli.StartProviderCMD(port, peers)
		},
	}

	providerCmd.Flags().IntVarP(&port, "port", "p", 0, "Start provider on a customized port")
	providerCmd.Flags().StringSliceVar(&peers, "peers", nil, "Addresses of the full party set")

	command.AddCommand(providerCmd)
}
