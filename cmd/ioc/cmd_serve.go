package main

import (
	"github.com/gocrud/ioc"
	"github.com/gocrud/ioc/hosting"
	"github.com/gocrud/ioc/web"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bean definitions over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, c, logger, err := root.bootstrap(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				s.Web.Port = port
			}

			host := web.New(c, web.WithPort(s.Web.Port), web.WithLogger(logger.WithCategory("web")))
			services := hosting.NewHostedServiceManager(logger)
			services.Add("web", host)
			return ioc.Run(cmd.Context(), logger, services)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides web.port)")
	return cmd
}
