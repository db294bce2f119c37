package dao

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SheetsDAO struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheetID string
}

// NewSheetsService authenticates as a service account from its client email
// and PEM private key.
func NewSheetsService(ctx context.Context, clientEmail, privateKey string, opts ...option.ClientOption) (*sheets.Service, error) {
	conf := &jwt.Config{
		Email:      clientEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	opts = append([]option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx))}, opts...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService -> %w", err)
	}

	return svc, nil
}

func NewSheetsDAO(svc *sheets.Service, spreadsheetID string) *SheetsDAO {
	return &SheetsDAO{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
	}
}

// AppendRow appends cells as one row after the last row of rangeName.
// Values are written RAW so user input is never evaluated as formulas.
func (d *SheetsDAO) AppendRow(ctx context.Context, rangeName, _ string, cells []string) error {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}

	_, err := d.values.Append(d.spreadsheetID, rangeName, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("d.values.Append -> %w", err)
	}

	return nil
}
