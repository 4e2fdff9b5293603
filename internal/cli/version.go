package cli

import (
	"fmt"
	"io"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/mrytune/internal/app"
)

func VersionCmd() *cobra.Command {
	return boa.CmdT[boa.NoParams]{
		Use:         "version",
		Short:       "Print version information",
		ParamEnrich: DefaultParamEnricher(),
		RunFunc: func(_ *boa.NoParams, cmd *cobra.Command, args []string) {
			runVersion(app.GetVersionInfo(), cmd.OutOrStdout())
		},
	}.ToCobra()
}

func runVersion(info app.VersionInfo, w io.Writer) {
	fmt.Fprintln(w, info.FullString())
}
