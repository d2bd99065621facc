package format

import "fmt"

type (
	FileType        uint8
	CompressionType uint8
)

const (
	TypeNone             FileType = 0x00 // TypeNone marks a null reference regardless of key.
	TypeBehaviorInstance FileType = 0x01 // TypeBehaviorInstance is an instantiated AI behavior.
	TypeBehaviorModel    FileType = 0x02 // TypeBehaviorModel is a behavior model shared by instances.
	TypeVariableBlock    FileType = 0x03 // TypeVariableBlock holds a block of script variables.
	TypeFunction         FileType = 0x04 // TypeFunction is a compiled script function.
	TypeGameObject       FileType = 0x05 // TypeGameObject is a placed world object.
	TypeTexture          FileType = 0x06 // TypeTexture is texture pixel data.
	TypePalette          FileType = 0x07 // TypePalette is a color palette.
	TypeSound            FileType = 0x08 // TypeSound is an audio sample.
	TypeGroup            FileType = 0x09 // TypeGroup is an owning list of references.
	TypeRaw              FileType = 0x0A // TypeRaw is an opaque byte record.

	// TypeUser is the first value free for caller-defined record types.
	TypeUser FileType = 0x80

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZlib CompressionType = 0x2 // CompressionZlib represents zlib streams.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x4 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x5 // CompressionLZ4 represents LZ4 block compression.
)

var fileTypeNames = map[FileType]string{
	TypeNone:             "none",
	TypeBehaviorInstance: "behavior-instance",
	TypeBehaviorModel:    "behavior-model",
	TypeVariableBlock:    "variable-block",
	TypeFunction:         "function",
	TypeGameObject:       "game-object",
	TypeTexture:          "texture",
	TypePalette:          "palette",
	TypeSound:            "sound",
	TypeGroup:            "group",
	TypeRaw:              "raw",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("user(0x%02x)", uint8(t))
}

// IsNone reports whether t is the null file type.
func (t FileType) IsNone() bool {
	return t == TypeNone
}

// ParseFileType parses a file type from its string name.
func ParseFileType(name string) (FileType, error) {
	for t, n := range fileTypeNames {
		if n == name {
			return t, nil
		}
	}

	return TypeNone, fmt.Errorf("unknown file type: %q", name)
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a compression type from its name, case-insensitively
// for the lowercase and canonical spellings.
func ParseCompressionType(name string) (CompressionType, error) {
	switch name {
	case "none", "None", "":
		return CompressionNone, nil
	case "zlib", "Zlib":
		return CompressionZlib, nil
	case "zstd", "Zstd":
		return CompressionZstd, nil
	case "s2", "S2":
		return CompressionS2, nil
	case "lz4", "LZ4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression type: %q", name)
	}
}
