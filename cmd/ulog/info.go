package main

import (
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"go.nesv.ca/ulog"
)

func newInfoCmd() *cobra.Command {
	var (
		sequence bool
		verify   bool
	)
	c := &cobra.Command{
		Use:     "info FILE...",
		Short:   "Print a summary of ULog files",
		Example: "ulog info --sequence /tmp/demo.ulg",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var names []string
			for _, arg := range args {
				if !sequence {
					names = append(names, arg)
					continue
				}
				seq, err := ulog.Sequence(arg)
				if err != nil {
					return errors.Wrapf(err, "sequence of %s", arg)
				}
				names = append(names, seq...)
			}
			for _, name := range names {
				if verify {
					if err := ulog.VerifyFile(name); err != nil {
						return err
					}
				}
				s, err := ulog.SummarizeFile(name)
				if err != nil {
					return errors.Wrapf(err, "summarize %s", name)
				}
				printSummary(cmd.OutOrStdout(), name, s)
			}
			return nil
		},
	}
	c.Flags().BoolVarP(&sequence, "sequence", "s", false, "also read every file rotated from FILE")
	c.Flags().BoolVar(&verify, "verify", false, "check every file against its .CHECKSUM file")
	return c
}

func printSummary(w io.Writer, name string, s *ulog.Summary) {
	fmt.Fprintf(w, "%s: %s, start timestamp %d\n", name, bytefmt.ByteSize(uint64(s.Bytes)), s.Timestamp)
	if len(s.Infos) > 0 {
		fmt.Fprintln(w, "Info messages:")
		for _, kv := range s.Infos {
			fmt.Fprintf(w, "  %s: %v\n", kv.Key, kv.Value)
		}
	}
	if len(s.Parameters) > 0 {
		fmt.Fprintln(w, "Parameters:")
		for _, kv := range s.Parameters {
			fmt.Fprintf(w, "  %s: %v\n", kv.Key, kv.Value)
		}
	}
	if len(s.Formats) > 0 {
		fmt.Fprintln(w, "Formats:")
		for _, l := range s.Formats {
			fmt.Fprintf(w, "  %s (%d bytes)\n", l.Name(), l.PackedSize())
			for _, f := range l.Fields() {
				fmt.Fprintf(w, "    %s\n", f)
			}
		}
	}
	if len(s.Subscriptions) > 0 {
		fmt.Fprintln(w, "Subscriptions:")
		for _, sub := range s.Subscriptions {
			fmt.Fprintf(w, "  %d: %s (multi_id %d): %d records, %s\n",
				sub.Handle, sub.Name, sub.MultiID, sub.Records, bytefmt.ByteSize(uint64(sub.Bytes)))
		}
	}
	for _, t := range s.Texts {
		fmt.Fprintf(w, "  [%s] %d %s\n", t.Level, t.Timestamp, t.Message)
	}
}
