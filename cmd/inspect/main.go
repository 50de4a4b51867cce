// Command inspect dumps users or chat records from a BadgerDB store in a
// readable table, for local debugging.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"intent-chat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	prefix := flag.String("prefix", "chat:", "Prefix to scan (user:, chat:, model:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Entity", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append([]string{shortKey(key), entityOf(key), describe(key, v)})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	color.Green.Printf("\n%d entries under prefix %q\n", count, *prefix)
}

func entityOf(key string) string {
	switch {
	case strings.HasPrefix(key, "user:"):
		return "USER"
	case strings.HasPrefix(key, "uid:"):
		return "USER-INDEX"
	case strings.HasPrefix(key, "chat:"):
		return "CHAT"
	case strings.HasPrefix(key, "model:"):
		return "MODEL"
	default:
		return "RAW"
	}
}

func shortKey(key string) string {
	if len(key) > 56 {
		return key[:56] + "…"
	}
	return key
}

func describe(key string, value []byte) string {
	switch {
	case strings.HasPrefix(key, "user:"):
		var user repositories.User
		if err := json.Unmarshal(value, &user); err != nil {
			return unreadable(value)
		}
		return fmt.Sprintf("%s tokens=%d joined=%s",
			user.Username, user.Tokens, user.CreatedAt.Format("2006-01-02"))
	case strings.HasPrefix(key, "chat:"):
		var record repositories.ChatRecord
		if err := json.Unmarshal(value, &record); err != nil {
			return unreadable(value)
		}
		return fmt.Sprintf("[%s] %s", record.Intent, truncate(record.Message, 48))
	default:
		return fmt.Sprintf("Size: %d bytes", len(value))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func unreadable(value []byte) string {
	return color.Red.Sprintf("unreadable (%d bytes)", len(value))
}
