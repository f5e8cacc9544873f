package llm

// UsageCounts reads input and output token counts from a provider usage map.
// It accepts the input_tokens/output_tokens and prompt_tokens/
// completion_tokens spellings; absent counts are zero.
func UsageCounts(usage map[string]int) (input, output int) {
	input = firstPositive(usage["input_tokens"], usage["prompt_tokens"])
	output = firstPositive(usage["output_tokens"], usage["completion_tokens"])
	return input, output
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
