package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"raid-lab/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Lists the boss catalog stored by the console, tier by tier.
func main() {
	dbPath := flag.String("db", "raid-lab.db", "Path to badger DB")
	tier := flag.Int("tier", 0, "Only show this tier")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := storage.NewBossRepository(db, nil, nil)
	bosses, err := repository.Bosses()
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Boss", "Tier"})
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

	for _, boss := range bosses {
		if *tier != 0 && boss.Tier != *tier {
			continue
		}
		table.Append([]string{"boss:" + strings.ToLower(boss.Name), boss.Name, strconv.Itoa(boss.Tier)})
	}
	table.Render()
}
