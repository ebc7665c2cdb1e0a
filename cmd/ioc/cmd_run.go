package main

import (
	"fmt"
	"io"

	"github.com/gocrud/ioc"
	"github.com/gocrud/ioc/cron"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/example/service"
	"github.com/gocrud/ioc/hosting"
	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Call testServiceA.TestC() and testServiceC.TestA()",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, logger, err := root.bootstrap(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if err := runOnce(c, out); err != nil {
				return err
			}
			if every == "" {
				return nil
			}

			svc, err := cron.New(c, logger.WithCategory("cron"),
				cron.AddJob("@every "+every, "testC", cron.BeanJob("testServiceA", func(a *service.TestServiceA) error {
					_, err := fmt.Fprintln(out, a.TestC())
					return err
				})),
				cron.AddJob("@every "+every, "testA", cron.BeanJob("testServiceC", func(cc *service.TestServiceC) error {
					_, err := fmt.Fprintln(out, cc.TestA())
					return err
				})),
			)
			if err != nil {
				return err
			}

			services := hosting.NewHostedServiceManager(logger)
			services.Add("cron", svc)
			return ioc.Run(cmd.Context(), logger, services)
		},
	}
	cmd.Flags().StringVar(&every, "every", "", "repeat at this interval (e.g. 10s, 1m) until interrupted")
	return cmd
}

// runOnce 相当于示例应用的 main
func runOnce(c *di.Container, out io.Writer) error {
	testServiceA, err := di.Resolve[*service.TestServiceA](c, "testServiceA")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, testServiceA.TestC())

	testServiceC, err := di.Resolve[*service.TestServiceC](c, "testServiceC")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, testServiceC.TestA())
	return nil
}
