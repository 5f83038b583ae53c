package archive

import "testing"

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://my-bucket/raw/acc-1/2025-03-25-abc.json", "my-bucket", "raw/acc-1/2025-03-25-abc.json", false},
		{"gs://my-bucket/file.json", "my-bucket", "file.json", false},
		{"gs://my-bucket/", "", "", true},
		{"gs://my-bucket", "", "", true},
		{"http://my-bucket/file.json", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := splitURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitURI(%q): %v", tt.uri, err)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("splitURI(%q) = %q, %q; want %q, %q", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}
