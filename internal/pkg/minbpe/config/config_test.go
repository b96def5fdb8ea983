package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"train ok", Config{Mode: ModeTrain, InputPath: "corpus.txt", VocabSize: 512}, false},
		{"train missing corpus", Config{Mode: ModeTrain, VocabSize: 512}, true},
		{"train vocab too small", Config{Mode: ModeTrain, InputPath: "c.txt", VocabSize: 100}, true},
		{"encode ok", Config{Mode: ModeEncode, ModelPath: "t.model", Text: "hi"}, false},
		{"encode missing model", Config{Mode: ModeEncode, Text: "hi"}, true},
		{"encode missing text", Config{Mode: ModeEncode, ModelPath: "t.model"}, true},
		{"decode ok", Config{Mode: ModeDecode, ModelPath: "t.model", IDs: "1,2,3"}, false},
		{"decode missing ids", Config{Mode: ModeDecode, ModelPath: "t.model"}, true},
		{"vocab ok", Config{Mode: ModeVocab, ModelPath: "t.model"}, false},
		{"vocab missing model", Config{Mode: ModeVocab}, true},
		{"unknown mode", Config{Mode: "compress"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
