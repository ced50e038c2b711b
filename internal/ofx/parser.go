// Package ofx reads OFX/QFX bank and credit-card statements and turns their
// lines into ledger transactions.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// MaxDescriptionLength matches the ledger's description limit.
const MaxDescriptionLength = 100

// ErrFractionalCents is returned for amounts that are not a whole number of cents.
var ErrFractionalCents = errors.New("amount is not a whole number of cents")

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix      = regexp.MustCompile(`^\d{2}/\d{2} `)

	hundred = big.NewRat(100, 1)
)

// descriptionPrefixes are stripped from the start of statement names.
var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// genericDescriptions say nothing about the counterparty.
var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"DEPOSIT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Entry is one statement line.
type Entry struct {
	PostedDate  model.Date
	FitID       string
	AccountID   string
	Description string
	Type        string
	AmountCents model.Cents
	// Credit is true for money flowing into the account.
	Credit bool
}

// Statement holds the entries of one parsed file.
type Statement struct {
	Entries  []Entry
	Accounts []string
	// Rejected counts lines that could not be converted.
	Rejected int
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

	// SEVERITY must be upper case.
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of bare opening tags.
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file from reader.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if bank, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			p.collect(stmt, string(bank.BankAcctFrom.AcctID), bank.BankTranList)
		}
	}

	for _, msg := range resp.CreditCard {
		if cc, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			p.collect(stmt, string(cc.CCAcctFrom.AcctID), cc.BankTranList)
		}
	}

	slog.Info("Parsed OFX file",
		"entries", len(stmt.Entries),
		"rejected", stmt.Rejected,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

func (p *Parser) collect(stmt *Statement, accountID string, list *ofxgo.TransactionList) {
	if accountID != "" {
		stmt.Accounts = appendUnique(stmt.Accounts, accountID)
	}
	if list == nil {
		return
	}

	for _, ofxTx := range list.Transactions {
		entry, err := p.convertTransaction(ofxTx, accountID)
		if err != nil {
			slog.Warn("Skipping OFX transaction",
				"fitid", string(ofxTx.FiTID),
				"account", accountID,
				"error", err)
			stmt.Rejected++
			continue
		}
		stmt.Entries = append(stmt.Entries, entry)
	}
}

// convertTransaction converts an OFX statement line into an Entry.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (Entry, error) {
	cents, credit, err := amountToCents(&ofxTx.TrnAmt.Rat)
	if err != nil {
		return Entry{}, err
	}

	trnType := strings.TrimSpace(ofxTx.TrnType.String())

	description := p.extractDescription(ofxTx)
	if description == "" {
		description = trnType
	}

	return Entry{
		FitID:       string(ofxTx.FiTID),
		AccountID:   accountID,
		PostedDate:  model.DateOf(ofxTx.DtPosted.Time),
		Description: truncate(description, MaxDescriptionLength),
		Type:        trnType,
		AmountCents: cents,
		Credit:      credit,
	}, nil
}

// amountToCents converts a signed OFX amount into absolute cents without
// going through floating point. Positive amounts are credits.
func amountToCents(amount *big.Rat) (model.Cents, bool, error) {
	cents := new(big.Rat).Mul(amount, hundred)
	if !cents.IsInt() {
		return 0, false, fmt.Errorf("%w: %s", ErrFractionalCents, amount.FloatString(4))
	}

	n := cents.Num()
	if !n.IsInt64() {
		return 0, false, fmt.Errorf("amount %s out of range", amount.FloatString(2))
	}

	value := n.Int64()
	credit := value > 0
	if value < 0 {
		value = -value
	}
	return model.Cents(value), credit, nil
}

// extractDescription picks the most useful counterparty text from a line.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericDescriptions[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " authorization date.
	name = datePrefix.ReplaceAllString(name, "")

	return strings.TrimSpace(name)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
