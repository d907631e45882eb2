package vo

// ProcessingOutput 转码产物描述
type ProcessingOutput struct {
	OutputRef   string          `json:"output_ref"`
	Format      string          `json:"format"`
	SizeBytes   int64           `json:"size_bytes"`
	Duration    float64         `json:"duration"`
	Resolution  string          `json:"resolution"`
	Thumbnails  []string        `json:"thumbnails,omitempty"`
	ManifestRef string          `json:"manifest_ref,omitempty"`
	Variants    []StreamVariant `json:"variants,omitempty"`
}

// StreamVariant 自适应码流的单个清晰度档位
type StreamVariant struct {
	Resolution string `json:"resolution"`
	Bitrate    string `json:"bitrate"`
}

// Clone returns a deep copy so readers never alias worker-owned slices.
func (o *ProcessingOutput) Clone() *ProcessingOutput {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Thumbnails != nil {
		cp.Thumbnails = append([]string(nil), o.Thumbnails...)
	}
	if o.Variants != nil {
		cp.Variants = append([]StreamVariant(nil), o.Variants...)
	}
	return &cp
}
