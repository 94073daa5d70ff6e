package blocklib

// Descriptor names one required artifact file: where to fetch it from and
// what to call it on disk. The descriptor set is fixed per artifact class.
type Descriptor struct {
	SourceURL string `json:"source_url" yaml:"source_url"`
	FileName  string `json:"file_name" yaml:"file_name"`
}

// DownloadBatch binds a descriptor set to a single target timestamp. Every
// file in the batch lands in the namespace directory of that timestamp, so
// batches never collide on disk.
type DownloadBatch struct {
	Class  ArtifactClass
	Target Timestamp
	Files  []Descriptor
}
