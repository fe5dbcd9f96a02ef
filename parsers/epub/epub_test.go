package epub_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/parsers/epub"
	parsertesting "github.com/sevigo/bookpurr/parsers/testing"
	"github.com/sevigo/bookpurr/schema"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const packageOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Long Road</dc:title>
    <dc:creator>Jane Roe</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="cover" href="cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="c1" href="text/chapter%201.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="cover" linear="no"/>
    <itemref idref="c1"/>
    <itemref idref="ghost"/>
    <itemref idref="c2"/>
  </spine>
</package>`

const chapterOne = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>ignored</title><style>p { color: red; }</style></head>
<body>
  <h1>Chapter <em>One</em></h1>
  <p>It was   a dark
     night.</p>
  <div><p>She said<br/>nothing.</p></div>
  <script>alert("x")</script>
</body>
</html>`

// chapterTwo is Latin-1 encoded and declares it.
var chapterTwo = []byte("<?xml version=\"1.0\" encoding=\"iso-8859-1\"?>\n" +
	"<html xmlns=\"http://www.w3.org/1999/xhtml\"><head><title>Second</title></head>" +
	"<body><p>Caf\xe9 au lait.</p></body></html>")

func buildEPUB(t *testing.T, files map[string][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func validBook() map[string][]byte {
	return map[string][]byte{
		"mimetype":                   []byte("application/epub+zip"),
		"META-INF/container.xml":     []byte(containerXML),
		"OEBPS/content.opf":          []byte(packageOPF),
		"OEBPS/cover.xhtml":          []byte(`<html><body><p>Cover</p></body></html>`),
		"OEBPS/text/chapter 1.xhtml": []byte(chapterOne),
		"OEBPS/text/chapter2.xhtml":  chapterTwo,
	}
}

func TestEPUBParser_CanHandle(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)

	assert.Equal(t, "epub", parser.Name())
	assert.True(t, parser.CanHandle("book.EPUB", nil))
	assert.False(t, parser.CanHandle("book.pdf", nil))
}

func TestEPUBParser_Parse(t *testing.T) {
	logger, buf := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)
	path := buildEPUB(t, validBook())

	book, err := parser.Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "The Long Road", book.Title)
	assert.Equal(t, "Jane Roe", book.Author)
	assert.Equal(t, "en", book.Language)
	assert.Equal(t, path, book.Source)

	require.Len(t, book.Chapters, 2)
	assert.Equal(t, schema.Chapter{
		Index: 1,
		Title: "Chapter One",
		Text:  "It was a dark night.\n\nShe said\nnothing.",
	}, book.Chapters[0])
	assert.Equal(t, schema.Chapter{
		Index: 2,
		Title: "Second",
		Text:  "Café au lait.",
	}, book.Chapters[1])

	assert.Contains(t, buf.String(), "Spine item not in manifest")
}

func TestEPUBParser_MissingSpineFile(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)

	files := validBook()
	delete(files, "OEBPS/text/chapter2.xhtml")
	path := buildEPUB(t, files)

	_, err := parser.Parse(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, epub.ErrMissingItem)
}

func TestEPUBParser_NoPackage(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)

	path := buildEPUB(t, map[string][]byte{
		"META-INF/container.xml": []byte(`<container><rootfiles></rootfiles></container>`),
	})

	_, err := parser.Parse(context.Background(), path)
	assert.ErrorIs(t, err, epub.ErrNoPackage)
}

func TestEPUBParser_NotAZip(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)

	path := parsertesting.WriteBook(t, "fake.epub", []byte("plain text"))

	_, err := parser.Parse(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open epub")
}

func TestEPUBParser_Cancelled(t *testing.T) {
	logger, _ := parsertesting.NewTestLogger(t)
	parser := epub.NewEPUBParser(logger)
	path := buildEPUB(t, validBook())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.Parse(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
