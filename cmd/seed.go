package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiForms/internal/seed"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or update the bundled sample forms",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		st, err := openStore(cfg.Store, log)
		if err != nil {
			return err
		}
		defer st.close()
		if err := st.prepare(); err != nil {
			return err
		}

		inputs, err := seed.Forms()
		if err != nil {
			return err
		}
		res, err := seed.Run(service.NewFormService(st.forms, log), inputs, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded forms: %d created, %d updated\n", res.Created, res.Updated)
		for _, in := range inputs {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (/api/forms/%s)\n", in.Title, in.Slug)
		}
		return nil
	},
}
