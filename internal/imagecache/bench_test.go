package imagecache

import (
	"fmt"
	"testing"
)

// BenchmarkGet_Warm measures lookups that always hit.
func BenchmarkGet_Warm(b *testing.B) {
	c, err := New(1 << 30)
	if err != nil {
		b.Fatal(err)
	}
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = fmt.Sprintf("https://example.com/%d.png", i)
		c.Put(keys[i], square(keys[i], 16))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := c.Get(keys[i%len(keys)]); !ok {
			b.Fatal("unexpected miss")
		}
	}
}

// BenchmarkPut_Evicting measures inserts into a full cache.
func BenchmarkPut_Evicting(b *testing.B) {
	// Room for 64 16x16 images.
	c, err := New(64*16*16*BytesPerPixel, WithSoftReferences(false))
	if err != nil {
		b.Fatal(err)
	}
	img := square("", 16)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(fmt.Sprintf("k%d", i), img)
	}
}

// BenchmarkGet_Parallel measures lookups from many goroutines.
func BenchmarkGet_Parallel(b *testing.B) {
	c, err := New(1 << 30)
	if err != nil {
		b.Fatal(err)
	}
	c.Put("hot", square("hot", 16))

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Get("hot")
		}
	})
}
