package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/internal/pipeline"
)

var classifyFile string

var classifyCmd = &cobra.Command{
	Use:   "classify [lead text]",
	Short: "Run one lead through the pipeline and print the verdict",
	Long:  "Classifies a single lead from the argument text or --file without posting anywhere. The text uses the notification field format (*First Name*: ... lines) or free-form message text.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		switch {
		case classifyFile != "":
			data, err := os.ReadFile(classifyFile)
			if err != nil {
				return eris.Wrapf(err, "read lead file %s", classifyFile)
			}
			text = string(data)
		case len(args) == 1:
			text = args[0]
		default:
			return eris.New("provide lead text as an argument or via --file")
		}

		if strings.TrimSpace(text) == "" {
			return eris.New("lead text is empty")
		}

		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		lead := extract.ParseLeadText(text)
		if !lead.Valid() {
			return eris.New("no usable lead fields in input")
		}

		outcome, err := env.Pipeline.Run(cmd.Context(), lead, "")
		if err != nil {
			return err
		}

		fmt.Println(pipeline.Format(outcome))
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "read lead text from file")
	rootCmd.AddCommand(classifyCmd)
}
