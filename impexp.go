package finbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// This file handles the import/export format: JSONL, one transaction object
// per line in the persisted wire layout. It is human readable and trivial to
// merge or diff.

// ImportTransactions reads transactions from r in the import/export format.
// Ids present in the input are discarded; the ledger assigns fresh ones on
// insert. Parsing stops at the first malformed line.
func ImportTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("line %d: cannot parse transaction: %w", line, err)
		}
		if err := validateImport(tx, line); err != nil {
			return nil, err
		}
		tx.ID = ""
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	return txs, nil
}

func validateImport(tx Transaction, line int) error {
	if tx.AccountID == "" {
		return fmt.Errorf("line %d: accountId is required", line)
	}
	switch tx.Type {
	case Income, Expense, Transfer:
	default:
		return fmt.Errorf("line %d: unknown transaction type %q", line, tx.Type)
	}
	if tx.TS == 0 {
		return fmt.Errorf("line %d: ts is required", line)
	}
	if tx.Recurrent && tx.Frequency == "" {
		return fmt.Errorf("line %d: template without frequency", line)
	}
	return nil
}

// ExportTransactions writes transactions to w in the import/export format,
// in the order given.
func ExportTransactions(w io.Writer, txs []Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("export transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}
