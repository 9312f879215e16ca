// Package pollledger composes the poll ledger bounded context: polls,
// candidates registered under them, and one ballot per voter per poll.
package pollledger
