// Package testdata embeds a small result tree used by the stage and pipeline
// tests: a DESeq2 table, five strain reconstructions, two GMT libraries and
// one AutoDock Vina log.
package testdata

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed tree
var tree embed.FS

// Strains lists the reconstructed strains in table order.
var Strains = []string{"Sp_ATCC49619", "Sp_TIGR4", "Sp_R6", "Sp_D39", "Ssal_K12"}

// PathogenSpecific are the fixture metabolites found in a pathogen strain and
// absent from Ssal_K12, sorted.
var PathogenSpecific = []string{"Capsule_Polysaccharide", "Choline", "Pneumolysin", "Teichoic_acid", "ToxinA"}

// FS returns the fixture tree rooted at the result root.
func FS() fs.FS {
	sub, err := fs.Sub(tree, "tree")
	if err != nil {
		panic(err)
	}
	return sub
}

// Materialize copies the fixture tree into dir, which becomes the result
// root. dir must not already contain any of the fixture files.
func Materialize(dir string) error {
	if err := os.CopyFS(dir, FS()); err != nil {
		return fmt.Errorf("testdata: materialize %s: %w", dir, err)
	}
	return nil
}
