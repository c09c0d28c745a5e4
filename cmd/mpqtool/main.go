// mpqtool is a CLI utility for inspecting client MPQ archives and extractor output.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

type rootCmd struct {
	Info    infoCmd    `command:"info" description:"Show archive information"`
	List    listCmd    `command:"list" alias:"ls" description:"List files (optional glob pattern)"`
	Extract extractCmd `command:"extract" alias:"x" description:"Extract file(s) to a directory"`
	Search  searchCmd  `command:"search" alias:"find" description:"Search files by name substring"`
	DBC     dbcCmd     `command:"dbc" description:"Dump a DBC table"`
	ADT     adtCmd     `command:"adt" description:"Describe a terrain tile (.adt)"`
	Map     mapCmd     `command:"map" description:"Describe a generated .map file"`
	Report  reportCmd  `command:"report" description:"Summarize an extraction report"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
