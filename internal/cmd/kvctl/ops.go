package kvctl

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rzbill/kvbind/internal/runtime"
	"github.com/rzbill/kvbind/pkg/kv"
)

// withDB opens the store, runs fn, and closes the store.
func withDB(g *globalFlags, cmd *cobra.Command, fn func(db *kv.DB) error) (err error) {
	rt, _, err := g.open(cmd)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, rt.Close()) }()
	return fn(rt.DB())
}

func newPutCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "put KEY VALUE",
		Short: "Store VALUE under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := g.decode(args[0])
			if err != nil {
				return err
			}
			value, err := g.decode(args[1])
			if err != nil {
				return err
			}
			return withDB(g, cmd, func(db *kv.DB) error { return db.Put(key, value) })
		},
	}
}

func newDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := g.decode(args[0])
			if err != nil {
				return err
			}
			return withDB(g, cmd, func(db *kv.DB) error { return db.Delete(key) })
		},
	}
}

func newMergeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "merge KEY OPERAND...",
		Short: "Merge one or more operands into KEY",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := g.decode(args[0])
			if err != nil {
				return err
			}
			operands := make([][]byte, 0, len(args)-1)
			for _, a := range args[1:] {
				op, err := g.decode(a)
				if err != nil {
					return err
				}
				operands = append(operands, op)
			}
			return withDB(g, cmd, func(db *kv.DB) error {
				for _, op := range operands {
					if err := db.Merge(key, op); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// getOutput is printed by get. Text is set for UTF-8 values, Base64
// otherwise.
type getOutput struct {
	Key    string `json:"key"`
	Found  bool   `json:"found"`
	Text   string `json:"text,omitempty"`
	Base64 string `json:"base64,omitempty"`
	Size   int    `json:"size"`
}

func newGetCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value of KEY as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := g.decode(args[0])
			if err != nil {
				return err
			}
			out := getOutput{Key: args[0]}
			if g.hex {
				out.Key = hex.EncodeToString(key)
			}
			err = withDB(g, cmd, func(db *kv.DB) error {
				found, err := db.View(key, func(v []byte) error {
					out.Size = len(v)
					if utf8.Valid(v) {
						out.Text = string(v)
					} else {
						out.Base64 = base64.StdEncoding.EncodeToString(v)
					}
					return nil
				})
				out.Found = found
				return err
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(out)
		},
	}
}

func newDestroyCommand(g *globalFlags) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the store's files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if !confirm {
				return fmt.Errorf("refusing to destroy %s without --confirm", cfg.DataDir)
			}
			if err := runtime.Destroy(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "destroyed %s\n", cfg.DataDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Required to actually destroy")
	return cmd
}
