// gobind-gen turns a YAML binding manifest into Go source that declares the
// manifest's types and queues its declarations on a binding.Registry.
//
//	gobind-gen -manifest girepository.yaml -package gi -o gi/declarations.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thesyncim/libgobind/pkg/manifest"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("[gobind-gen] ")

	manifestPath := flag.String("manifest", "", "Path of the YAML manifest to read.")
	pkg := flag.String("package", "bindings", "Package name of the generated file.")
	out := flag.String("o", "", "Output file. Defaults to stdout.")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Generates binding declarations from a manifest.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *manifestPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		log.Fatal(err)
	}
	f := generate(m, *pkg, filepath.Base(*manifestPath))

	if *out == "" {
		if err := f.Render(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := f.Save(*out); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s (%d declarations, %d enums)", *out, len(m.Declarations), len(m.Enums))
}
