package extractor

// extractionPrompt instructs the model to return a strict JSON object with the
// six fixed category arrays. The %s is the speaker-labeled transcript.
const extractionPrompt = `Analyze this interview transcript and extract the important elements.

TRANSCRIPT:
%s

Return ONLY valid JSON (no markdown):
{
  "stories": [{"content": "summary", "importance": 1-10}],
  "expressions": [{"content": "expression", "importance": 1-10}],
  "values": [{"content": "value", "importance": 1-10}],
  "emotions": [{"content": "moment", "importance": 1-10}],
  "relationships": [{"content": "person and context", "importance": 1-10}],
  "advice": [{"content": "advice", "importance": 1-10}]
}

Be selective - extract only what is significant.`
