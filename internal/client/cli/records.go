package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ebalakin/costmate/internal/client/api"
)

const dateLayout = "2006-01-02"

// List prints the visible records, falling back to the local cache when the
// server is unreachable.
func (a *App) List(ctx context.Context) error {
	records, cached, err := a.records.List(ctx)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if cached {
		fmt.Println("(offline, showing cached records)")
	}

	for _, r := range records {
		fmt.Printf("%s  %s  %.2f %s  %s\n",
			r.ID, r.OccurredOn.Format(dateLayout), r.Amount, r.Currency, r.Title)
	}
	return nil
}

// AddRecord prompts for record fields and creates a record.
func (a *App) AddRecord(ctx context.Context) error {
	params, err := a.promptRecordParams()
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	record, err := a.records.Create(ctx, params)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Created record %s\n", record.ID)
	return nil
}

// ShowRecord prints one record with companions and asset ids.
func (a *App) ShowRecord(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	r, err := a.records.Get(ctx, id)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Title:     %s\n", r.Title)
	fmt.Printf("Date:      %s\n", r.OccurredOn.Format(dateLayout))
	fmt.Printf("Amount:    %.2f %s\n", r.Amount, r.Currency)
	fmt.Printf("Mood:      %d\n", r.Mood)
	if r.Note != "" {
		fmt.Printf("Note:      %s\n", r.Note)
	}
	if len(r.CompanionIDs) > 0 {
		fmt.Printf("With:      %s\n", strings.Join(r.CompanionIDs, ", "))
	}
	for _, asset := range r.Assets {
		fmt.Printf("Asset:     %s\n", asset.ID)
	}
	return nil
}

// EditRecord prompts for new field values and updates the record.
func (a *App) EditRecord(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	params, err := a.promptRecordParams()
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if _, err := a.records.Update(ctx, id, params); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Updated.")
	return nil
}

// DeleteRecord soft-deletes a record.
func (a *App) DeleteRecord(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if err := a.records.Delete(ctx, id); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

// AttachFile uploads a local file to a record.
func (a *App) AttachFile(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	path, err := GetSimpleText(a.reader, "File path", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	assetID, err := a.records.UploadAttachment(ctx, id, data)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Uploaded asset %s\n", assetID)
	return nil
}

// SaveAttachment downloads an attachment into a local file.
func (a *App) SaveAttachment(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Record id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	assetID, err := GetSimpleText(a.reader, "Asset id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	path, err := GetSimpleText(a.reader, "Save to", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	data, err := a.records.DownloadAttachment(ctx, id, assetID)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		fmt.Println(err.Error())
		return err
	}
	fmt.Printf("Saved %d bytes to %s\n", len(data), path)
	return nil
}

// promptRecordParams collects record fields interactively. Companions are a
// comma-separated list of user ids and may be empty.
func (a *App) promptRecordParams() (api.RecordParams, error) {
	var params api.RecordParams

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return params, err
	}
	dateText, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", os.Stdout)
	if err != nil {
		return params, err
	}
	occurredOn := time.Now().UTC().Truncate(24 * time.Hour)
	if dateText != "" {
		occurredOn, err = time.Parse(dateLayout, dateText)
		if err != nil {
			return params, err
		}
	}
	amountText, err := GetSimpleText(a.reader, "Amount", os.Stdout)
	if err != nil {
		return params, err
	}
	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		return params, err
	}
	currency, err := GetSimpleText(a.reader, "Currency (3 letters)", os.Stdout)
	if err != nil {
		return params, err
	}
	moodText, err := GetSimpleText(a.reader, "Mood 0-5 (empty for 0)", os.Stdout)
	if err != nil {
		return params, err
	}
	mood := 0
	if moodText != "" {
		mood, err = strconv.Atoi(moodText)
		if err != nil {
			return params, err
		}
	}
	note, err := GetSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return params, err
	}
	companionsText, err := GetSimpleText(a.reader, "Companion ids, comma separated (optional)", os.Stdout)
	if err != nil {
		return params, err
	}

	params = api.RecordParams{
		Title:      title,
		Note:       note,
		OccurredOn: occurredOn,
		Amount:     amount,
		Currency:   strings.ToUpper(currency),
		Mood:       mood,
	}
	if companionsText != "" {
		for _, id := range strings.Split(companionsText, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.CompanionIDs = append(params.CompanionIDs, id)
			}
		}
	}
	return params, nil
}
