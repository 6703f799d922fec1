package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/openfluke/convfield/nn"
)

func newResolveCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the length and padding of every stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := loadNetwork(v)
			if err != nil {
				return err
			}
			renderDims(cmd.OutOrStdout(), net)
			return nil
		},
	}
}

func newFieldCmd(v *viper.Viper) *cobra.Command {
	var stage, unit int
	var projective bool

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Draw the receptive (default) or projective field of one unit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(v)
			if err != nil {
				return err
			}
			net := s.Network()

			mode := nn.ModeFromModifier(projective)
			if !cmd.Flags().Changed("stage") {
				// Receptive fields start at the output, projective at the input
				stage = net.Len()
				if mode == nn.FieldProjective {
					stage = 0
				}
			}

			want := nn.Select(stage, unit, mode)
			if got := s.Select(want); !got.Active {
				return fmt.Errorf("selection %s does not fit stages %v", want, net.StageDims())
			}
			renderField(cmd.OutOrStdout(), net, s.Masks(), s.Selection())
			return nil
		},
	}
	cmd.Flags().IntVar(&stage, "stage", 0, "anchor stage (0 is the input; default output for receptive, input for projective)")
	cmd.Flags().IntVar(&unit, "unit", 0, "anchor unit within the stage")
	cmd.Flags().BoolVarP(&projective, "projective", "p", false, "propagate toward the output")
	return cmd
}

func newDescribeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print per-layer geometry telemetry as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := loadNetwork(v)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(nn.ExtractBlueprint(net), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal blueprint: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newPathsCmd(v *viper.Viper) *cobra.Command {
	var from, to, unit int

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Count connection paths between two stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := loadNetwork(v)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("to") {
				to = net.Len()
			}
			counts, err := nn.PathCounts(net, from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if unit < 0 {
				fmt.Fprintf(out, "%v\n", mat.Formatted(counts, mat.Squeeze()))
				return nil
			}
			weights := nn.PathWeights(counts, unit)
			if weights == nil {
				return fmt.Errorf("unit %d not in stage %d", unit, to)
			}
			for i, w := range weights {
				if w > 0 {
					fmt.Fprintf(out, "%4d  %6.0f  %5.1f%%\n", i, counts.At(unit, i), 100*w)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "source stage")
	cmd.Flags().IntVar(&to, "to", 0, "target stage (default output)")
	cmd.Flags().IntVar(&unit, "unit", -1, "only list the paths of one target unit")
	return cmd
}

func newEncodeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Print the shareable fragment of a network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := loadNetwork(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nn.EncodeFragment(net))
			return nil
		},
	}
}

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	var out, id string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <fragment>",
		Short: "Turn a fragment into a network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := nn.DecodeFragment(args[0])
			if err != nil {
				return err
			}
			if out != "" {
				return nn.SaveNetwork(net, id, out)
			}

			var data []byte
			if asJSON {
				data, err = nn.MarshalNetworkJSON(net, id)
			} else {
				data, err = nn.MarshalNetworkYAML(net, id)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file; .yaml/.yml selects YAML, otherwise JSON")
	cmd.Flags().StringVar(&id, "id", "", "document id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	return cmd
}
