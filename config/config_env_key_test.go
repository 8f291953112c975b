package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"firebase": map[string]any{
			"projectId":     "demo",
			"databaseUrl":   "",
			"storageBucket": "",
		},
		"qrcode": map[string]any{
			"errorCorrectionLevel": "M",
		},
		"env": map[string]any{
			"serviceName": "sprout",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "FIREBASE_PROJECTID", want: "firebase.projectId"},
		{envKey: "FIREBASE_DATABASEURL", want: "firebase.databaseUrl"},
		{envKey: "FIREBASE_STORAGEBUCKET", want: "firebase.storageBucket"},
		{envKey: "QRCODE_ERRORCORRECTIONLEVEL", want: "qrcode.errorCorrectionLevel"},
		{envKey: "ENV_SERVICENAME", want: "env.serviceName"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
