package tokenizer

import (
	"strings"
	"testing"
)

// benchASCIIDoc is pure-ASCII input that qualifies for the byte fast path.
var benchASCIIDoc = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>ASCII Benchmark Document</title>
    <link rel="stylesheet" href="styles.css">
</head>
<body>
    <main>
        <article>
            <h1>Hello World</h1>
            <p class="intro">Plain ASCII content only.</p>
` + strings.Repeat(`            <p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p>
`, 10) + `        </article>
    </main>
    <footer><p>&copy; 2024 Test Site. All rights reserved.</p></footer>
</body>
</html>`

// benchUnicodeDoc forces the rune-decoding path.
//
//nolint:gosmopolitan
const benchUnicodeDoc = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <title>Unicode テスト</title>
</head>
<body>
    <div class="コンテナ">
        <h1>こんにちは世界</h1>
        <p>これはUnicodeコンテンツです。</p>
        <p>日本語、中文、한글、العربية</p>
    </div>
</body>
</html>`

func drainBench(tok *Tokenizer) {
	for {
		if tok.Next().Type == EOF {
			return
		}
	}
}

func BenchmarkTokenizeASCIIFastPath(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		drainBench(New(benchASCIIDoc))
	}
}

func BenchmarkTokenizeASCIIForcedRuneMode(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tok := New(benchASCIIDoc)
		tok.ForceRuneMode()
		drainBench(tok)
	}
}

func BenchmarkTokenizeUnicode(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		drainBench(New(benchUnicodeDoc))
	}
}

func BenchmarkNextRune(b *testing.B) {
	run := func(b *testing.B, forceRunes bool) {
		tok := New(benchASCIIDoc)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			tok.reset(benchASCIIDoc)
			if forceRunes {
				tok.ForceRuneMode()
			}
			for {
				if _, ok := tok.nextRune(); !ok {
					break
				}
			}
		}
	}
	b.Run("ascii", func(b *testing.B) { run(b, false) })
	b.Run("runes", func(b *testing.B) { run(b, true) })
}
