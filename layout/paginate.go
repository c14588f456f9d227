package layout

// Chunk 是按字符（rune）切出的一段文本及其在原文中的起始偏移。
type Chunk struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Split 将文本切成互不重叠的定长片段，最后一段可以更短。size <= 0 时返回整段。
func Split(text string, size int) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		return []Chunk{{Offset: 0, Text: text}}
	}
	chunks := make([]Chunk, 0, (len(runes)+size-1)/size)
	for off := 0; off < len(runes); off += size {
		end := min(off+size, len(runes))
		chunks = append(chunks, Chunk{Offset: off, Text: string(runes[off:end])})
	}
	return chunks
}

// Intn 是 Sample 所需的随机源。
type Intn interface {
	IntN(n int) int
}

// Sample 从均匀随机的偏移处截取 size 个字符，用于单页抽样。
// 文本不超过 size 时原样返回，偏移为 0。
func Sample(text string, size int, rng Intn) Chunk {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return Chunk{Offset: 0, Text: text}
	}
	off := rng.IntN(len(runes) - size + 1)
	return Chunk{Offset: off, Text: string(runes[off : off+size])}
}
