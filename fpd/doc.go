// Package fpd provides a typed, in-memory model of a platform description
// (FPD) and its YAML persistence.
//
// The document holds the platform's module instances ("module-SAs"), each
// keyed by a [ModuleSAKey], together with their library instances and PCD
// build definitions, plus the platform wide dynamic PCD build table.
//
// # Usage
//
// Read an existing platform:
//
//	doc, err := fpd.ReadFile("Nt32.fpd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range doc.Modules {
//	    fmt.Println(m.Key)
//	}
//
// Write it back:
//
//	if err := doc.WriteFile("Nt32.fpd.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
// A Document is not safe for concurrent mutation. The platform engine in the
// root package serializes every write it makes.
package fpd
