package collection

import "time"

// PrismVersion is the manifest schema version this build writes, not the
// binary's own release version (spec §4.11's detach/attach manifest).
const PrismVersion = "1"

// Manifest accompanies a detached collection's backend data: the
// schema.yaml the spec requires, plus enough metadata to validate an
// attach without re-deriving it from the data files.
type Manifest struct {
	Version        int
	Collection     string
	PrismVersion   string
	ExportedAt     time.Time
	DocumentCount  uint64
	SizeBytes      int64
	Checksum       string
	Backends       []string
}

// BuildManifest captures a collection's export metadata at detach time.
func BuildManifest(name string, docCount uint64, sizeBytes int64, checksum string, backends []string) Manifest {
	return Manifest{
		Version:       1,
		Collection:    name,
		PrismVersion:  PrismVersion,
		ExportedAt:    time.Now(),
		DocumentCount: docCount,
		SizeBytes:     sizeBytes,
		Checksum:      checksum,
		Backends:      backends,
	}
}
