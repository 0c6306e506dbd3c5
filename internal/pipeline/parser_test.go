package pipeline

import "testing"

func TestParseNormalization(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		rawRemark   string
		wantCleaned string
		wantNotes   string
		wantOK      bool
	}{
		{
			name:        "well formed",
			reply:       "CLEANED: Temporary reversal back to Kotak account\nNOTES: -",
			rawRemark:   "UPI/SHAIK NIYA/temp rever",
			wantCleaned: "Temporary reversal back to Kotak account",
			wantNotes:   "",
			wantOK:      true,
		},
		{
			name:        "labels in reverse order",
			reply:       "NOTES: unsure about the month\nCLEANED: Savings October transfer",
			rawRemark:   "savings oc",
			wantCleaned: "Savings October transfer",
			wantNotes:   "unsure about the month",
			wantOK:      true,
		},
		{
			name:        "lowercase labels with markdown bold",
			reply:       "**cleaned:** Milk payment to local vendor\n**notes:** -",
			rawRemark:   "UPI/milk",
			wantCleaned: "Milk payment to local vendor",
			wantNotes:   "",
			wantOK:      true,
		},
		{
			name:        "wrapped value continues previous label",
			reply:       "CLEANED: Payment to Apollo\nPharmacy for medicines\nNOTES: -",
			rawRemark:   "APOLLO PHA",
			wantCleaned: "Payment to Apollo Pharmacy for medicines",
			wantNotes:   "",
			wantOK:      true,
		},
		{
			name:        "code fenced reply",
			reply:       "```\nCLEANED: Rent payment\nNOTES: -\n```",
			rawRemark:   "rent",
			wantCleaned: "Rent payment",
			wantNotes:   "",
			wantOK:      true,
		},
		{
			name:        "missing notes label",
			reply:       "CLEANED: Fuel purchase",
			rawRemark:   "hp petrol",
			wantCleaned: "Fuel purchase",
			wantNotes:   "",
			wantOK:      false,
		},
		{
			name:        "no labels at all",
			reply:       "This transaction appears to be a grocery purchase.",
			rawRemark:   "UPI/1234/GROCERY",
			wantCleaned: "UPI/1234/GROCERY",
			wantNotes:   "",
			wantOK:      false,
		},
		{
			name:        "empty reply",
			reply:       "",
			rawRemark:   "raw remark",
			wantCleaned: "raw remark",
			wantNotes:   "",
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNormalization(tt.reply, tt.rawRemark)
			if got.CleanedRemark != tt.wantCleaned {
				t.Errorf("CleanedRemark = %q, want %q", got.CleanedRemark, tt.wantCleaned)
			}
			if got.Notes != tt.wantNotes {
				t.Errorf("Notes = %q, want %q", got.Notes, tt.wantNotes)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestParseCategorization(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		want   CategorizationResult
		wantOK bool
	}{
		{
			name:   "well formed",
			reply:  "CATEGORY: Travel\nSUBCATEGORY: Train\nCONFIDENCE: High",
			want:   CategorizationResult{Category: "Travel", Subcategory: "Train", Confidence: ConfidenceHigh},
			wantOK: true,
		},
		{
			name:   "dash subcategory means empty",
			reply:  "CATEGORY: Refunds\nSUBCATEGORY: -\nCONFIDENCE: Medium",
			want:   CategorizationResult{Category: "Refunds", Subcategory: "", Confidence: ConfidenceMedium},
			wantOK: true,
		},
		{
			name:   "subcategory label absent is still well formed",
			reply:  "CONFIDENCE: low\nCATEGORY: Transfers",
			want:   CategorizationResult{Category: "Transfers", Subcategory: "", Confidence: ConfidenceLow},
			wantOK: true,
		},
		{
			name:   "unknown confidence degrades to Low",
			reply:  "CATEGORY: Fuel\nCONFIDENCE: Certain",
			want:   CategorizationResult{Category: "Fuel", Confidence: ConfidenceLow},
			wantOK: true,
		},
		{
			name:   "missing category",
			reply:  "CONFIDENCE: High",
			want:   CategorizationResult{Category: UncategorizedLabel, Confidence: ConfidenceHigh},
			wantOK: false,
		},
		{
			name:   "free text reply",
			reply:  "I think this is probably groceries.",
			want:   CategorizationResult{Category: UncategorizedLabel, Confidence: ConfidenceLow},
			wantOK: false,
		},
		{
			name:   "placeholder category falls to sentinel",
			reply:  "CATEGORY: -\nCONFIDENCE: Low",
			want:   CategorizationResult{Category: UncategorizedLabel, Confidence: ConfidenceLow},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCategorization(tt.reply)
			if got != tt.want {
				t.Errorf("ParseCategorization() = %+v, want %+v", got, tt.want)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		input string
		want  Confidence
	}{
		{"High", ConfidenceHigh},
		{"HIGH", ConfidenceHigh},
		{"  medium ", ConfidenceMedium},
		{"Low", ConfidenceLow},
		{"very sure", ConfidenceLow},
		{"", ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseConfidence(tt.input); got != tt.want {
				t.Errorf("ParseConfidence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
