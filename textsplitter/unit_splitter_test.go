package textsplitter_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/bookpurr/schema"
	"github.com/sevigo/bookpurr/textsplitter"
)

const commaSentence = "Short sentence. Very long sentence that goes on and on and should be split by commas, " +
	"first comma part, second comma part, third comma part."

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxUnits int
		want     []string
	}{
		{"Fits in one chunk", "Hello, world!", 100, []string{"Hello, world!"}},
		{
			"Word fallback",
			"This sentence is very long and should be split into chunks.",
			3,
			[]string{"This sentence is", "very long and", "should be split", "into chunks."},
		},
		{"No unnecessary split", "Short text. Another short text.", 5, []string{"Short text. Another short text."}},
		{"Spacing preserved", "这是 第一段。\n这是第二段。", 100, []string{"这是 第一段。\n这是第二段。"}},
		{
			"Clause then comma tier",
			"First complex sentence; second part of sentence, with a comma, and more details.",
			4,
			[]string{"First complex sentence;", "second part of sentence,", "with a comma,", "and more details."},
		},
		{
			"Comma tier with fallback",
			commaSentence,
			5,
			[]string{
				"Short sentence.",
				"Very long sentence that goes",
				"on and on and should",
				"be split by commas,",
				"first comma part,",
				"second comma part,",
				"third comma part.",
			},
		},
		{
			"Greedy merge at larger budget",
			commaSentence,
			10,
			[]string{
				"Short sentence.",
				"Very long sentence that goes on and on and should",
				"be split by commas,",
				"first comma part, second comma part, third comma part.",
			},
		},
		{
			"Decimal numbers stay whole",
			"An average human lives for 80.79 years. Then they die.",
			4,
			[]string{"An average human lives", "for 80.79 years.", "Then they die."},
		},
		{"Pure CJK windows", "我能吞下玻璃而不伤身体。", 3, []string{"我能吞", "下玻璃", "而不伤", "身体。"}},
		{"Script change", "Hello World 你好世界", 2, []string{"Hello World", "你好", "世界"}},
		{
			"CJK sentence marks",
			"Chapter 1 第一章。The story begins。",
			3,
			[]string{"Chapter 1", "第一章。", "The story begins。"},
		},
		{
			"Mixed sentences",
			"这是测试。Test text。这是中文。",
			3,
			[]string{"这是测", "试。", "Test text。", "这是中", "文。"},
		},
		{"Latin words then CJK", "The cat and dog 猫和狗", 3, []string{"The cat and", "dog", "猫和狗"}},
		{
			"Paragraph breaks dropped",
			"Chapter 1\n\n第一章\n\nThe story\n\n故事",
			3,
			[]string{"Chapter 1", "第一章", "The story", "故事"},
		},
		{"Latin run then CJK windows", "This is very long 这是非常长的句子", 4, []string{"This is very long", "这是非常", "长的句子"}},
		{"Period after a number is not a sentence end", "He was 30. She was 25.", 4, []string{"He was 30. She", "was 25."}},
		{"Leading CJK bracket before Latin", "「Hello world」", 1, []string{"「Hello", "world」"}},
		{"Oversized token cut at unit boundaries", "a/b/c/d/e", 2, []string{"a/b/", "c/d/", "e"}},
		{"Blank input", "  \n\n  ", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textsplitter.Chunk(tt.text, tt.maxUnits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUnitSplitter_InvalidMaxUnits(t *testing.T) {
	for _, n := range []int{0, -1} {
		s, err := textsplitter.NewUnitSplitter(n)
		assert.Nil(t, s)
		require.ErrorIs(t, err, textsplitter.ErrInvalidMaxUnits)
	}

	_, err := textsplitter.Chunk("text", 0)
	require.ErrorIs(t, err, textsplitter.ErrInvalidMaxUnits)
}

func TestUnitSplitter_Invariants(t *testing.T) {
	texts := []string{
		commaSentence,
		"Chapter 1\n\n第一章\n\nThe story\n\n故事",
		"这是测试。Test text。这是中文。",
		strings.Repeat("The quick brown fox jumps over the lazy dog; 狐狸跳过了懒狗。 ", 20),
		"no punctuation at all just a very long run of plain words that keeps going and going",
	}

	for _, maxUnits := range []int{1, 2, 3, 7, 50} {
		s, err := textsplitter.NewUnitSplitter(maxUnits)
		require.NoError(t, err)

		for _, text := range texts {
			var got []string
			for chunk := range s.Chunks(text) {
				assert.NotEmpty(t, strings.TrimSpace(chunk))
				assert.Equal(t, strings.TrimSpace(chunk), chunk, "chunks are trimmed")
				assert.LessOrEqual(t, textsplitter.CountUnits(chunk), maxUnits, "chunk %q", chunk)
				got = append(got, chunk)
			}

			assert.Equal(t, squash(text), squash(strings.Join(got, "")), "content preserved for max %d", maxUnits)

			total := 0
			for _, chunk := range got {
				total += textsplitter.CountUnits(chunk)
			}
			assert.Equal(t, textsplitter.CountUnits(text), total, "no unit lost or duplicated")
		}
	}
}

func TestUnitSplitter_ChunksIsRestartableAndStoppable(t *testing.T) {
	s, err := textsplitter.NewUnitSplitter(3)
	require.NoError(t, err)

	text := "我能吞下玻璃而不伤身体。"
	var first, second []string
	for c := range s.Chunks(text) {
		first = append(first, c)
	}
	for c := range s.Chunks(text) {
		second = append(second, c)
	}
	assert.Equal(t, first, second)

	var taken []string
	for c := range s.Chunks(text) {
		taken = append(taken, c)
		if len(taken) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"我能吞", "下玻璃"}, taken)
}

func TestUnitSplitter_SplitTextCanceled(t *testing.T) {
	s, err := textsplitter.NewUnitSplitter(2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.SplitText(ctx, "one two three four five")
	require.ErrorIs(t, err, context.Canceled)
}

func TestUnitSplitter_WithTiers(t *testing.T) {
	s, err := textsplitter.NewUnitSplitter(4, textsplitter.WithTiers(textsplitter.TierComma))
	require.NoError(t, err)

	got, err := s.SplitText(context.Background(), "One two. Three four, five six.")
	require.NoError(t, err)
	assert.Equal(t, []string{"One two. Three four,", "five six."}, got)
}

func TestUnitSplitter_SplitDocuments(t *testing.T) {
	s, err := textsplitter.NewUnitSplitter(3)
	require.NoError(t, err)

	docs := []schema.Document{
		schema.NewDocument("我能吞下玻璃而不伤身体。", map[string]any{
			schema.MetaChapterIndex: 1,
			schema.MetaChapterTitle: "Glass",
		}),
		schema.NewDocument("   ", map[string]any{schema.MetaChapterIndex: 2}),
		schema.NewDocument("Short text.", map[string]any{schema.MetaChapterIndex: 3}),
	}

	chunks, err := s.SplitDocuments(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	assert.Equal(t, "我能吞", chunks[0].PageContent)
	assert.Equal(t, 0, chunks[0].Metadata[schema.MetaChunkIndex])
	assert.Equal(t, 3, chunks[0].Metadata[schema.MetaUnitCount])
	assert.Equal(t, "Glass", chunks[3].Metadata[schema.MetaChapterTitle])
	assert.Equal(t, 3, chunks[3].Metadata[schema.MetaChunkIndex])
	assert.Equal(t, 2, chunks[3].Metadata[schema.MetaUnitCount])

	assert.Equal(t, "Short text.", chunks[4].PageContent)
	assert.Equal(t, 3, chunks[4].Metadata[schema.MetaChapterIndex])
	assert.Equal(t, 0, chunks[4].Metadata[schema.MetaChunkIndex])

	_, hasIndex := docs[0].Metadata[schema.MetaChunkIndex]
	assert.False(t, hasIndex, "parent metadata is not mutated")
}

func TestSplitMixed(t *testing.T) {
	got, err := textsplitter.SplitMixed("Hello World 你好世界", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World", "你好", "世界"}, got)

	got, err = textsplitter.SplitMixed("「你好」世界", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"「你", "好」", "世", "界"}, got)

	got, err = textsplitter.SplitMixed("你好「Hello」", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"你好", "「Hello」"}, got, "opening bracket leads the next run")

	got, err = textsplitter.SplitMixed("。Hello world", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"。Hello", "world"}, got)

	_, err = textsplitter.SplitMixed("x", 0)
	require.ErrorIs(t, err, textsplitter.ErrInvalidMaxUnits)
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
