package ports

//go:generate mockgen -package=portsmock -destination=portsmock/event_publisher.go pollledger/contexts/governance/poll-ledger/ports EventPublisher
