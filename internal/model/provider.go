package model

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

const (
	ChunkTableOllama = "pdf_chunks_ollama"
	ChunkTableOpenAI = "pdf_chunks_openai"
)

func ValidProvider(provider string) bool {
	return provider == ProviderOllama || provider == ProviderOpenAI
}

// ChunkTable maps an embedding provider to the table holding its chunks.
// The tables differ only in the vector column width.
func ChunkTable(provider string) string {
	if provider == ProviderOpenAI {
		return ChunkTableOpenAI
	}
	return ChunkTableOllama
}

// AlternateProvider returns the other provider, used when a chunk insert
// fails with a vector dimension mismatch.
func AlternateProvider(provider string) string {
	if provider == ProviderOpenAI {
		return ProviderOllama
	}
	return ProviderOpenAI
}
