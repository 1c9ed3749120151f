package pathresolve

import "testing"

func TestCache_RootIsBackslash(t *testing.T) {
	c := NewCache([]Entry{{EntryNumber: 5, Name: ".", ParentEntry: 5}})
	if got := c.Path(5); got != `\` {
		t.Fatalf("Path(5) = %q, want \\", got)
	}
}

func TestCache_DirectChildOfRoot(t *testing.T) {
	c := NewCache([]Entry{
		{EntryNumber: 5, Name: ".", ParentEntry: 5},
		{EntryNumber: 100, Name: "Users", ParentEntry: 5},
	})
	if got := c.Path(100); got != `\Users` {
		t.Fatalf("Path(100) = %q, want \\Users", got)
	}
}

func TestCache_NestedChain(t *testing.T) {
	c := NewCache([]Entry{
		{EntryNumber: 5, Name: ".", ParentEntry: 5},
		{EntryNumber: 100, Name: "Users", ParentEntry: 5},
		{EntryNumber: 101, Name: "alice", ParentEntry: 100},
		{EntryNumber: 102, Name: "Documents", ParentEntry: 101},
	})
	if got := c.Path(102); got != `\Users\alice\Documents` {
		t.Fatalf("Path(102) = %q, want \\Users\\alice\\Documents", got)
	}
}

func TestCache_SelfParentFallsBackToNameOnly(t *testing.T) {
	c := NewCache([]Entry{
		{EntryNumber: 5, Name: ".", ParentEntry: 5},
		{EntryNumber: 200, Name: "orphan", ParentEntry: 200},
	})
	if got := c.Path(200); got != `\orphan` {
		t.Fatalf("Path(200) = %q, want \\orphan", got)
	}
}

func TestCache_MissingParentFallsBackToNameOnly(t *testing.T) {
	c := NewCache([]Entry{
		{EntryNumber: 300, Name: "dangling", ParentEntry: 999},
	})
	if got := c.Path(300); got != `\dangling` {
		t.Fatalf("Path(300) = %q, want \\dangling", got)
	}
}

func TestCache_CyclicParentChainDoesNotHang(t *testing.T) {
	// Neither entry can resolve to a genuinely rooted path, and the
	// result is order-dependent: resolving 10 first walks into 11, whose
	// own recursive lookup of 10 hits the cycle guard and returns "",
	// so 11 settles on "\b" and 10 then builds on top of it as "\b\a".
	// Had 11 been listed first the results would swap. This mirrors the
	// reference implementation's own insertion-ordered dict walk rather
	// than a cleaned-up symmetric fallback.
	c := NewCache([]Entry{
		{EntryNumber: 10, Name: "a", ParentEntry: 11},
		{EntryNumber: 11, Name: "b", ParentEntry: 10},
	})
	if got := c.Path(11); got != `\b` {
		t.Fatalf("Path(11) = %q, want \\b", got)
	}
	if got := c.Path(10); got != `\b\a` {
		t.Fatalf("Path(10) = %q, want \\b\\a", got)
	}
}

func TestCache_UnknownEntryReturnsEmpty(t *testing.T) {
	c := NewCache(nil)
	if got := c.Path(42); got != "" {
		t.Fatalf("Path(42) = %q, want empty", got)
	}
}
