package deckexport

import "fmt"

// Version information for GoDeckExport.
const (
	VersionMajor = 1
	VersionMinor = 2
	VersionPatch = 0
)

// Version is the full version string, also written as the PDF creator.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
