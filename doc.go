// Package receipt is the composition root of the receipt log.
//
// It connects the core domain (entries, validation, the Service) with the
// filesystem adapter and the default composer, following a hexagonal layout:
// pkg/core knows nothing about files or HTTP.
//
// The log is a single JSON document holding every entry newest first. Entries
// are only ever appended at the head; ids are time-ordered ULIDs assigned by
// the store. Appends from goroutines and from other processes are serialized,
// so concurrent writers never lose each other's entries.
//
// Usage:
//
//	svc, err := receipt.New("./data",
//		receipt.WithAutoInit(true),
//		receipt.WithLogger(logger),
//	)
//
//	// Compose an item (and maybe a bonus coupon) from text
//	entries, err := svc.Submit(ctx, "stapler")
//
//	// Read the whole log
//	all, err := svc.ListEntries(ctx)
//
// The HTTP boundary lives in pkg/httpapi, its client in pkg/client and the
// polling viewer in pkg/viewer. cmd/receipt wires them into a CLI.
package receipt
