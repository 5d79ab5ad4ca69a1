package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"support-bot/models"
)

var conversationCSVHeader = []string{
	"Session ID", "Start Time", "End Time", "Total Messages", "On-Topic", "Off-Topic", "Status",
}

// WriteConversationsCSV writes conversations as CSV with a header row
func WriteConversationsCSV(w io.Writer, conversations []models.Conversation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(conversationCSVHeader); err != nil {
		return err
	}
	for _, conv := range conversations {
		record := []string{
			conv.SessionID,
			conv.StartTime.UTC().Format(time.RFC3339),
			conv.EndTime.UTC().Format(time.RFC3339),
			strconv.FormatInt(conv.TotalMessages, 10),
			strconv.FormatInt(conv.OnTopicCount, 10),
			strconv.FormatInt(conv.OffTopicCount, 10),
			conv.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
