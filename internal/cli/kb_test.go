package cli

import "testing"

// The kb subcommands keep their own --kb flag variable. The process and
// batch commands register a --kb flag with an empty default (meaning "use
// the configured directory"), and command init order must not let those
// registrations clobber the kb commands' default.
func TestKBFlagDefault(t *testing.T) {
	if kbPath != "knowledge_base" {
		t.Errorf("kb command default = %q, want %q", kbPath, "knowledge_base")
	}

	flag := kbCmd.PersistentFlags().Lookup("kb")
	if flag == nil {
		t.Fatal("kb command must register a --kb flag")
	}
	if flag.DefValue != "knowledge_base" {
		t.Errorf("--kb default = %q, want %q", flag.DefValue, "knowledge_base")
	}
}

func TestProcessBatchKBFlagDefaults(t *testing.T) {
	for _, tc := range []struct {
		name string
		def  string
	}{
		{"process", ""},
		{"batch", ""},
	} {
		for _, sub := range rootCmd.Commands() {
			if sub.Name() != tc.name {
				continue
			}
			flag := sub.Flags().Lookup("kb")
			if flag == nil {
				t.Fatalf("%s must register a --kb flag", tc.name)
			}
			if flag.DefValue != tc.def {
				t.Errorf("%s --kb default = %q, want %q", tc.name, flag.DefValue, tc.def)
			}
		}
	}
}
