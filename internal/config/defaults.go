package config

const (
	defaultStorePath     = "annotations.csv"
	defaultExtension     = ".tif"
	defaultSuffixMod     = "_oct"
	defaultCommentColumn = "comments"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults. The label
// vocabularies follow the most recent annotation schema; older schemas are
// accepted as load-time inputs only.
func Default() Config {
	return Config{
		Labels: Labels{
			TissueTypes: []string{
				"tumor",
				"dense",
				"fatty",
				"lymphatic",
				"muscle",
				"blood vessel",
				"fibrotic",
			},
			ClinicalClasses: []string{
				"CLINICAL_normal",
				"CLINICAL_normal_adjacent",
				"CLINICAL_tumor",
			},
			OtherAttributes: []string{
				"artifact",
				"dark",
				"exclude",
				"missing_sheath",
				"unidentified_structure",
			},
			CommentColumn: defaultCommentColumn,
		},
		Paths: Paths{
			StorePath: defaultStorePath,
		},
		Frames: Frames{
			Extension:      defaultExtension,
			SuffixModifier: defaultSuffixMod,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
