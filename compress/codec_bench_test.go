package compress

import (
	"fmt"
	"testing"
)

func generateBenchmarkData(size int, compressibility string) []byte {
	data := make([]byte, size)

	switch compressibility {
	case "compressible":
		pattern := []byte("game-object id=0042 model=behavior:0x1f pos=(12,4,7)")
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "semi_compressible":
		for i := range data {
			if i%100 < 50 {
				data[i] = byte(i % 256)
			} else {
				data[i] = byte((i*7 + i*i) % 256)
			}
		}
	default:
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	sizes := []int{1024, 16384, 262144}
	compressibilities := []string{"compressible", "semi_compressible", "incompressible"}

	for codecName, codec := range getAllCodecs() {
		b.Run(codecName, func(b *testing.B) {
			for _, size := range sizes {
				for _, comp := range compressibilities {
					b.Run(fmt.Sprintf("%dKB_%s", size/1024, comp), func(b *testing.B) {
						data := generateBenchmarkData(size, comp)
						compressed, err := codec.Compress(data)
						if err != nil {
							b.Fatal(err)
						}

						b.ReportAllocs()
						b.SetBytes(int64(len(data)))

						b.ResetTimer()
						for i := 0; i < b.N; i++ {
							if _, err := DecompressSized(codec, compressed, len(data)); err != nil {
								b.Fatal(err)
							}
						}
					})
				}
			}
		})
	}
}

func BenchmarkPipeline_Apply(b *testing.B) {
	p, err := ParsePipeline([]string{"xor:5a", "xxh64"})
	if err != nil {
		b.Fatal(err)
	}
	data := generateBenchmarkData(16384, "compressible")
	sealed, err := p.Reverse(data)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(sealed)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Apply(sealed); err != nil {
			b.Fatal(err)
		}
	}
}
