package webserver

import (
	"github.com/spf13/cobra"

	"github.com/openkpi/kpi-gateway/internal/business"
	"github.com/openkpi/kpi-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"web-server",
		"KPI Gateway web server",
		"Hosts the dashboard API: login, session, KPI and dashboard endpoints.",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
