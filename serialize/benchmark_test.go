package serialize

import (
	"strings"
	"testing"

	"github.com/basalt-labs/html5"
	"github.com/basalt-labs/html5/dom"
)

const benchDocument = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Blog Post - Example Site</title>
    <link rel="stylesheet" href="styles.css">
</head>
<body>
    <header>
        <nav>
            <ul>
                <li><a href="/">Home</a></li>
                <li><a href="/about">About</a></li>
                <li><a href="/blog">Blog</a></li>
            </ul>
        </nav>
    </header>
    <main>
        <article>
            <h1>Understanding HTML5 Parsing</h1>
            <p class="meta">Published on <time datetime="2025-01-15">January 15, 2025</time></p>
            <section>
                <h2>Introduction</h2>
                <p>The HTML5 specification defines how browsers parse HTML.</p>
                <ul>
                    <li>Error recovery rules</li>
                    <li>Tree construction algorithms</li>
                    <li>Tokenization state machines</li>
                </ul>
            </section>
        </article>
    </main>
    <footer><p class="copyright">&copy; 2025 Example Corp.</p></footer>
</body>
</html>`

func benchParse(b *testing.B, input string) *dom.Document {
	b.Helper()
	doc, err := html5.Parse(input)
	if err != nil {
		b.Fatal(err)
	}
	return doc
}

func BenchmarkToHTML(b *testing.B) {
	doc := benchParse(b, benchDocument)
	opts := DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToHTML(doc, opts)
	}
}

func BenchmarkToHTMLPretty(b *testing.B) {
	doc := benchParse(b, benchDocument)
	opts := Options{Pretty: true, IndentSize: 2}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToHTML(doc, opts)
	}
}

func BenchmarkToHTMLDeepNesting(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("<div>")
	}
	sb.WriteString("deep")
	for i := 0; i < 100; i++ {
		sb.WriteString("</div>")
	}
	doc := benchParse(b, sb.String())
	opts := DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToHTML(doc, opts)
	}
}

func BenchmarkToHTMLEscaping(b *testing.B) {
	doc := benchParse(b, "<p>"+strings.Repeat("a < b & c > d ", 200)+"</p>")
	opts := DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToHTML(doc, opts)
	}
}

func BenchmarkToMarkdown(b *testing.B) {
	doc := benchParse(b, benchDocument)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToMarkdown(doc)
	}
}

func BenchmarkToHTMLParallel(b *testing.B) {
	doc := benchParse(b, benchDocument)
	opts := DefaultOptions()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = ToHTML(doc, opts)
		}
	})
}
