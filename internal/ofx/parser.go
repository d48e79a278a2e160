// Package ofx turns bank OFX/QFX statements into importable expense
// records. Credits (deposits, refunds) are skipped; an expense ledger only
// records money going out.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
)

// Record is one debit ready for import. Category is a best-effort keyword
// guess and may be empty; the importer falls back to its default.
type Record struct {
	Date        time.Time
	FiTID       string
	Description string
	AccountID   string
	Category    string
	Amount      float64
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files:
	// opening tags alone on a line with no >
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns the debits as expense
// records.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader) ([]Record, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var records []Record
	var skippedCredits, bankStmts, ccStmts int

	appendTxns := func(accountID string, txns []ofxgo.Transaction) {
		for _, ofxTx := range txns {
			record, ok := p.convertTransaction(ofxTx, accountID)
			if !ok {
				skippedCredits++
				continue
			}
			records = append(records, record)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList != nil {
				appendTxns(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList.Transactions)
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList != nil {
				appendTxns(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList.Transactions)
			}
		}
	}

	slog.Info("Parsed OFX file",
		"expenses", len(records),
		"skipped_credits", skippedCredits,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

// convertTransaction converts one OFX transaction. Credits return ok=false.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (Record, bool) {
	// OFX uses negative amounts for debits
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount >= 0 {
		return Record{}, false
	}

	description := p.extractMerchantName(ofxTx)

	return Record{
		FiTID:       string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Description: description,
		AccountID:   accountID,
		Category:    guessCategory(description),
		Amount:      -amount,
	}, true
}

// categoryKeywords maps merchant substrings to the seeded category names.
// Earlier entries win when a description matches more than one category.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"food", []string{"restaurant", "grocery", "market", "coffee", "starbucks", "pizza", "deli", "bakery", "foods"}},
	{"entertainment", []string{"netflix", "spotify", "cinema", "theatre", "steam", "hulu", "concert"}},
	{"transportation", []string{"uber", "lyft", "gas", "fuel", "parking", "transit", "shell", "chevron"}},
	{"utilities", []string{"electric", "water", "internet", "comcast", "utility", "energy"}},
	{"health", []string{"pharmacy", "cvs", "walgreens", "clinic", "dental", "medical"}},
	{"shopping", []string{"amazon", "target", "walmart", "ebay", "store"}},
}

// guessCategory suggests a category from the cleaned merchant name, or ""
// when nothing matches.
func guessCategory(description string) string {
	lower := strings.ToLower(description)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}
	return ""
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Sometimes MEMO has better merchant info
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date patterns
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
