package main

import (
	"strconv"

	"github.com/spf13/cobra"

	httptransport "pollledger/contexts/governance/poll-ledger/transport/http"
	"pollledger/internal/app/bootstrap"
)

func newCreatePollCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		start       uint64
		end         uint64
	)
	cmd := &cobra.Command{
		Use:   "create-poll <poll-id>",
		Short: "Create a poll with a voting window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.withLedger(func(ledger *bootstrap.Ledger) error {
				resp, err := ledger.Module.Handler.CreatePollHandler(cmd.Context(), httptransport.CreatePollRequest{
					PollID:      pollID,
					Description: description,
					Start:       start,
					End:         end,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "poll description")
	cmd.Flags().Uint64Var(&start, "start", 0, "voting window start, unix seconds")
	cmd.Flags().Uint64Var(&end, "end", 0, "voting window end, unix seconds")
	return cmd
}

func newAddCandidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-candidate <poll-id> <name>",
		Short: "Register the next candidate of a poll",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.withLedger(func(ledger *bootstrap.Ledger) error {
				resp, err := ledger.Module.Handler.RegisterCandidateHandler(cmd.Context(), pollID, httptransport.RegisterCandidateRequest{
					CandidateName: args[1],
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}

func newVoteCmd(opts *rootOptions) *cobra.Command {
	var voter string
	cmd := &cobra.Command{
		Use:   "vote <poll-id> <candidate-index>",
		Short: "Cast a ballot on behalf of a voter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}
			return opts.withLedger(func(ledger *bootstrap.Ledger) error {
				resp, err := ledger.Module.Handler.CastVoteHandler(cmd.Context(), pollID, voter, httptransport.CastVoteRequest{
					CandidateIndex: &index,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().StringVar(&voter, "voter", "", "voter identity")
	_ = cmd.MarkFlagRequired("voter")
	return cmd
}

func newResultsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "results <poll-id>",
		Short: "Print ranked results of a poll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pollID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			return opts.withLedger(func(ledger *bootstrap.Ledger) error {
				resp, err := ledger.Module.Handler.ResultsHandler(cmd.Context(), pollID)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
}
