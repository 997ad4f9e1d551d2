package embed_data

import _ "embed"

//go:embed prompts/test_generation_prompt.tmpl
var TestGenerationPrompt []byte

//go:embed models/model_details.json
var ModelDetails []byte

//go:embed tree-sitter/queries/javascript.json
var JavascriptQuery []byte

//go:embed tree-sitter/queries/typescript.json
var TypescriptQuery []byte
