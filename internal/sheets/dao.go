package sheets

import (
	"context"
	"fmt"

	sheetsv4 "google.golang.org/api/sheets/v4"

	"dance-admin/internal/schedule"
	"dance-admin/internal/util"
)

// TabName is the sheet a competition's schedule is written to.
func TabName(competitionID int) string {
	return fmt.Sprintf("Schedule_%d", competitionID)
}

var header = []interface{}{"time", "kind", "id", "name", "age_category", "type"}

func (c *Client) ensureTab(ctx context.Context, sheet string) error {
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			return nil
		}
	}
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{Properties: &sheetsv4.SheetProperties{Title: sheet}},
		}},
	}
	_, err = c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (c *Client) clear(ctx context.Context, sheet string) error {
	_, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, sheet+"!A:Z", &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	return err
}

func (c *Client) writeRows(ctx context.Context, sheet string, rows [][]interface{}) error {
	vr := &sheetsv4.ValueRange{Values: rows}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// Rows renders a schedule as sheet rows, header first.
func Rows(s schedule.Schedule) [][]interface{} {
	rows := [][]interface{}{header}
	for _, e := range s {
		rows = append(rows, []interface{}{
			e.Time, string(e.Kind), e.ID, e.Name, string(e.AgeCategory), e.Type,
		})
	}
	return rows
}

// WriteSchedule replaces the content of the competition's tab with s.
func (c *Client) WriteSchedule(ctx context.Context, competitionID int, s schedule.Schedule) error {
	tab := TabName(competitionID)
	if err := c.ensureTab(ctx, tab); err != nil {
		return fmt.Errorf("tab %s: %w", tab, err)
	}
	if err := c.clear(ctx, tab); err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}
	rows := Rows(s)
	rows = append(rows, []interface{}{"exported_at", util.NowISO()})
	if err := c.writeRows(ctx, tab, rows); err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}
	return nil
}
