// Command inspect dumps the durable message store for debugging.
// It opens Badger read-only with the lock guard bypassed, so it can run
// while the relay process holds the directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mentorhub/domain"
	"mentorhub/repositories"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/mentorhub-badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg: or conv:)")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	color.Green.Printf("mentorhub store inspector: %s (prefix %q)\n", *dbPath, *prefix)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Sender", "Receiver", "At", "Read", "Content"})
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

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				rows++
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
	color.Cyan.Printf("%d entries\n", rows)
}

func toRow(key string, value []byte) []string {
	if strings.HasPrefix(key, "conv:") {
		// Index rows point at the latest message key of a conversation
		return []string{key, "-", repositories.PeerFromIndexKey(key), "-", "-",
			fmt.Sprintf("last -> %s", shorten(string(value)))}
	}

	var message domain.Message
	if err := json.Unmarshal(value, &message); err != nil {
		return []string{key, "-", "-", "-", "-", fmt.Sprintf("unreadable: %v", err)}
	}
	return []string{
		shorten(key),
		message.Sender,
		message.Receiver,
		message.CreatedAt.Format(time.RFC3339),
		fmt.Sprintf("%t", message.Read),
		message.Content,
	}
}

func shorten(s string) string {
	if len(s) > 48 {
		return s[:48] + "…"
	}
	return s
}
