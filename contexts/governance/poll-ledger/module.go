package pollledger

import (
	"log/slog"

	httpadapter "pollledger/contexts/governance/poll-ledger/adapters/http"
	"pollledger/contexts/governance/poll-ledger/adapters/memory"
	"pollledger/contexts/governance/poll-ledger/application/commands"
	"pollledger/contexts/governance/poll-ledger/application/queries"
	"pollledger/contexts/governance/poll-ledger/domain/rules"
	"pollledger/contexts/governance/poll-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger   ports.Ledger
	Reader   ports.LedgerReader
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Limits   rules.Limits
	Window   rules.WindowPolicy
	Recorder ports.OperationRecorder
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Polls: commands.PollRegistry{
				Ledger:   deps.Ledger,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Limits:   deps.Limits,
				Recorder: deps.Recorder,
				Logger:   deps.Logger,
			},
			Candidates: commands.CandidateRegistry{
				Ledger:   deps.Ledger,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Limits:   deps.Limits,
				Window:   deps.Window,
				Recorder: deps.Recorder,
				Logger:   deps.Logger,
			},
			Votes: commands.VoteLedger{
				Ledger:   deps.Ledger,
				Clock:    deps.Clock,
				IDGen:    deps.IDGen,
				Window:   deps.Window,
				Recorder: deps.Recorder,
				Logger:   deps.Logger,
			},
			Queries: queries.PollQueries{
				Reader: deps.Reader,
			},
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory store with default
// limits and a strict window policy.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger: store,
		Reader: store,
		Clock:  store,
		IDGen:  store,
		Limits: rules.DefaultLimits(),
		Window: rules.StrictWindowPolicy(),
		Logger: logger,
	})
	module.Store = store
	return module
}
