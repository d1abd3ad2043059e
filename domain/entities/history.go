package entities

import "time"

// HistoryTimeFormat is the display format for record timestamps.
const HistoryTimeFormat = "2006-01-02 15:04:05"

// TranslationRecord is one completed translation. Records are append-only:
// once created they are never mutated or removed for the session's lifetime.
type TranslationRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	SourceLanguageName string    `json:"source_language"`
	TargetLanguageName string    `json:"target_language"`
	InputText          string    `json:"input_text"`
	OutputText         string    `json:"output_text"`
}

// NewTranslationRecord builds a record labeling both sides with display
// names resolved from their language codes.
func NewTranslationRecord(sourceCode, targetCode, input, output string) TranslationRecord {
	return TranslationRecord{
		Timestamp:          time.Now(),
		SourceLanguageName: LanguageName(sourceCode),
		TargetLanguageName: LanguageName(targetCode),
		InputText:          input,
		OutputText:         output,
	}
}

// FormattedTimestamp renders the record's timestamp for display.
func (r TranslationRecord) FormattedTimestamp() string {
	return r.Timestamp.Format(HistoryTimeFormat)
}

// History is an ordered, append-only log of translation records scoped to
// one session.
type History struct {
	records []TranslationRecord
}

// Append adds a record to the end of the log.
func (h *History) Append(record TranslationRecord) {
	h.records = append(h.records, record)
}

// Records returns a copy of the log in append order.
func (h *History) Records() []TranslationRecord {
	out := make([]TranslationRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}
