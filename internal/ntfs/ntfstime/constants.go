package ntfstime

// AttrType identifies an MFT attribute's type code.
type AttrType uint32

const (
	AttrStandardInformation AttrType = 0x10
	AttrAttributeList       AttrType = 0x20
	AttrFileName            AttrType = 0x30
	AttrObjectID            AttrType = 0x40
	AttrSecurityDescriptor  AttrType = 0x50
	AttrVolumeName          AttrType = 0x60
	AttrVolumeInformation   AttrType = 0x70
	AttrData                AttrType = 0x80
	AttrIndexRoot           AttrType = 0x90
	AttrIndexAllocation     AttrType = 0xA0
	AttrBitmap              AttrType = 0xB0
	AttrReparsePoint        AttrType = 0xC0
	AttrEAInformation       AttrType = 0xD0
	AttrEA                  AttrType = 0xE0
	AttrLoggedUtilityStream AttrType = 0x100
	AttrEnd                 AttrType = 0xFFFFFFFF
)

// FileAttr is the DOS-style attribute flag set carried by $STANDARD_INFORMATION
// and $FILE_NAME.
type FileAttr uint32

const (
	FileAttrReadOnly          FileAttr = 0x0001
	FileAttrHidden            FileAttr = 0x0002
	FileAttrSystem            FileAttr = 0x0004
	FileAttrDirectory         FileAttr = 0x0010
	FileAttrArchive           FileAttr = 0x0020
	FileAttrDevice            FileAttr = 0x0040
	FileAttrNormal            FileAttr = 0x0080
	FileAttrTemporary         FileAttr = 0x0100
	FileAttrSparseFile        FileAttr = 0x0200
	FileAttrReparsePoint      FileAttr = 0x0400
	FileAttrCompressed        FileAttr = 0x0800
	FileAttrOffline           FileAttr = 0x1000
	FileAttrNotContentIndexed FileAttr = 0x2000
	FileAttrEncrypted         FileAttr = 0x4000
)

// String renders the flag set the way every sink displays it: a
// pipe-joined label list, or "Normal" when nothing is set.
func (f FileAttr) String() string {
	var labels []string
	add := func(flag FileAttr, name string) {
		if f&flag != 0 {
			labels = append(labels, name)
		}
	}
	add(FileAttrReadOnly, "ReadOnly")
	add(FileAttrHidden, "Hidden")
	add(FileAttrSystem, "System")
	add(FileAttrDirectory, "Directory")
	add(FileAttrArchive, "Archive")
	add(FileAttrCompressed, "Compressed")
	add(FileAttrEncrypted, "Encrypted")
	add(FileAttrSparseFile, "Sparse")
	add(FileAttrReparsePoint, "ReparsePoint")
	if len(labels) == 0 {
		return "Normal"
	}
	joined := labels[0]
	for _, l := range labels[1:] {
		joined += "|" + l
	}
	return joined
}

// MftRecordFlag is the in-use/directory/extension flag set in the MFT
// entry header.
type MftRecordFlag uint16

const (
	MftRecordInUse        MftRecordFlag = 0x0001
	MftRecordDirectory    MftRecordFlag = 0x0002
	MftRecordExtension    MftRecordFlag = 0x0004
	MftRecordSpecialIndex MftRecordFlag = 0x0008
)

// UsnReason is the bitmask of change reasons in a USN record.
type UsnReason uint32

const (
	UsnReasonDataOverwrite        UsnReason = 0x00000001
	UsnReasonDataExtend           UsnReason = 0x00000002
	UsnReasonDataTruncation       UsnReason = 0x00000004
	UsnReasonNamedDataOverwrite   UsnReason = 0x00000010
	UsnReasonNamedDataExtend      UsnReason = 0x00000020
	UsnReasonNamedDataTruncation  UsnReason = 0x00000040
	UsnReasonFileCreate           UsnReason = 0x00000100
	UsnReasonFileDelete           UsnReason = 0x00000200
	UsnReasonEAChange             UsnReason = 0x00000400
	UsnReasonSecurityChange       UsnReason = 0x00000800
	UsnReasonRenameOldName        UsnReason = 0x00001000
	UsnReasonRenameNewName        UsnReason = 0x00002000
	UsnReasonIndexableChange      UsnReason = 0x00004000
	UsnReasonBasicInfoChange      UsnReason = 0x00008000
	UsnReasonHardLinkChange       UsnReason = 0x00010000
	UsnReasonCompressionChange    UsnReason = 0x00020000
	UsnReasonEncryptionChange     UsnReason = 0x00040000
	UsnReasonObjectIDChange       UsnReason = 0x00080000
	UsnReasonReparsePointChange   UsnReason = 0x00100000
	UsnReasonStreamChange         UsnReason = 0x00200000
	UsnReasonTransactedChange     UsnReason = 0x00400000
	UsnReasonIntegrityChange      UsnReason = 0x00800000
	UsnReasonClose                UsnReason = 0x80000000
)

// String renders the reason mask as a pipe-joined label list, or the raw
// hex value if no known bit is set.
func (r UsnReason) String() string {
	var labels []string
	add := func(flag UsnReason, name string) {
		if r&flag != 0 {
			labels = append(labels, name)
		}
	}
	add(UsnReasonDataOverwrite, "DataOverwrite")
	add(UsnReasonDataExtend, "DataExtend")
	add(UsnReasonDataTruncation, "DataTruncation")
	add(UsnReasonFileCreate, "FileCreate")
	add(UsnReasonFileDelete, "FileDelete")
	add(UsnReasonRenameOldName, "RenameOldName")
	add(UsnReasonRenameNewName, "RenameNewName")
	add(UsnReasonSecurityChange, "SecurityChange")
	add(UsnReasonBasicInfoChange, "BasicInfoChange")
	add(UsnReasonHardLinkChange, "HardLinkChange")
	add(UsnReasonClose, "Close")
	if len(labels) == 0 {
		return hex32(uint32(r))
	}
	joined := labels[0]
	for _, l := range labels[1:] {
		joined += "|" + l
	}
	return joined
}

func hex32(v uint32) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 10)
	b[0], b[1] = '0', 'x'
	for i := 0; i < 8; i++ {
		shift := uint(28 - i*4)
		b[2+i] = digits[(v>>shift)&0xF]
	}
	return string(b)
}

// FileNamespace is the $FILE_NAME namespace byte.
type FileNamespace uint8

const (
	NamespacePOSIX       FileNamespace = 0
	NamespaceWin32       FileNamespace = 1
	NamespaceDOS         FileNamespace = 2
	NamespaceWin32AndDOS FileNamespace = 3
)

// Rank returns a namespace's priority for best-name selection: higher
// ranks are preferred. Win32 and Win32+DOS are treated as equally
// preferred per §3/§4.D ("Win32-and-DOS ≈ Win32 > POSIX > DOS").
func (n FileNamespace) Rank() int {
	switch n {
	case NamespaceWin32, NamespaceWin32AndDOS:
		return 3
	case NamespacePOSIX:
		return 2
	case NamespaceDOS:
		return 1
	default:
		return 0
	}
}

// LogOpcode names the redo/undo operation codes found in a $LogFile log
// record header, per the glossary's "Opcodes referenced" table.
type LogOpcode uint16

const (
	OpNoop                          LogOpcode = 0x00
	OpCompensationLogRecord         LogOpcode = 0x01
	OpInitializeFileRecordSegment   LogOpcode = 0x02
	OpDeallocateFileRecordSegment   LogOpcode = 0x03
	OpWriteEndOfFileRecordSegment   LogOpcode = 0x04
	OpCreateAttribute               LogOpcode = 0x05
	OpDeleteAttribute               LogOpcode = 0x06
	OpUpdateResidentValue           LogOpcode = 0x07
	OpUpdateNonResidentValue        LogOpcode = 0x08
	OpUpdateMappingPairs            LogOpcode = 0x09
	OpDeleteDirtyClusters           LogOpcode = 0x0A
	OpSetNewAttributeSizes          LogOpcode = 0x0B
	OpAddIndexEntryRoot             LogOpcode = 0x0C
	OpDeleteIndexEntryRoot          LogOpcode = 0x0D
	OpAddIndexEntryAllocation       LogOpcode = 0x0E
	OpUpdateFileNameRoot            LogOpcode = 0x0F
	OpUpdateFileNameAllocation      LogOpcode = 0x10
	OpSetIndexEntryVcnAllocation    LogOpcode = 0x11
	OpDeleteIndexEntryAllocation    LogOpcode = 0x12
	OpSetBitsInNonResidentBitMap    LogOpcode = 0x13
	OpClearBitsInNonResidentBitMap  LogOpcode = 0x14
	OpSetBitsInNonResidentBitMap2   LogOpcode = 0x15
	OpHotFix                        LogOpcode = 0x17
	OpEndTopLevelAction             LogOpcode = 0x18
	OpPrepareTransaction            LogOpcode = 0x19
	OpCommitTransaction             LogOpcode = 0x1A
	OpForgetTransaction             LogOpcode = 0x1B
	OpOpenNonResidentAttribute      LogOpcode = 0x1C
	OpOpenAttributeTableDump        LogOpcode = 0x1D
	OpAttributeNamesDump            LogOpcode = 0x1E
	OpDirtyPageTableDump            LogOpcode = 0x1F
	OpTransactionTableDump          LogOpcode = 0x20
	OpUpdateRecordDataRoot          LogOpcode = 0x21
)

var opcodeNames = map[LogOpcode]string{
	OpNoop:                         "Noop",
	OpCompensationLogRecord:        "CompensationLogRecord",
	OpInitializeFileRecordSegment:  "InitializeFileRecordSegment",
	OpDeallocateFileRecordSegment:  "DeallocateFileRecordSegment",
	OpWriteEndOfFileRecordSegment:  "WriteEndOfFileRecordSegment",
	OpCreateAttribute:              "CreateAttribute",
	OpDeleteAttribute:              "DeleteAttribute",
	OpUpdateResidentValue:          "UpdateResidentValue",
	OpUpdateNonResidentValue:       "UpdateNonResidentValue",
	OpUpdateMappingPairs:           "UpdateMappingPairs",
	OpDeleteDirtyClusters:          "DeleteDirtyClusters",
	OpSetNewAttributeSizes:         "SetNewAttributeSizes",
	OpAddIndexEntryRoot:            "AddIndexEntryRoot",
	OpDeleteIndexEntryRoot:         "DeleteIndexEntryRoot",
	OpAddIndexEntryAllocation:      "AddIndexEntryAllocation",
	OpUpdateFileNameRoot:           "UpdateFileNameRoot",
	OpUpdateFileNameAllocation:     "UpdateFileNameAllocation",
	OpSetIndexEntryVcnAllocation:   "SetIndexEntryVcnAllocation",
	OpDeleteIndexEntryAllocation:   "DeleteIndexEntryAllocation",
	OpSetBitsInNonResidentBitMap:   "SetBitsInNonresidentBitMap",
	OpClearBitsInNonResidentBitMap: "ClearBitsInNonresidentBitMap",
	OpSetBitsInNonResidentBitMap2:  "SetBitsInNonresidentBitMap2",
	OpHotFix:                       "HotFix",
	OpEndTopLevelAction:            "EndTopLevelAction",
	OpPrepareTransaction:           "PrepareTransaction",
	OpCommitTransaction:            "CommitTransaction",
	OpForgetTransaction:            "ForgetTransaction",
	OpOpenNonResidentAttribute:     "OpenNonResidentAttribute",
	OpOpenAttributeTableDump:       "OpenAttributeTableDump",
	OpAttributeNamesDump:           "AttributeNamesDump",
	OpDirtyPageTableDump:           "DirtyPageTableDump",
	OpTransactionTableDump:         "TransactionTableDump",
	OpUpdateRecordDataRoot:         "UpdateRecordDataRoot",
}

// Name returns the opcode's human-readable label, or "Op0xNN" for an
// opcode outside the known table.
func (o LogOpcode) Name() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	const digits = "0123456789ABCDEF"
	b := make([]byte, 6)
	copy(b, "Op0x")
	b[4] = digits[(o>>4)&0xF]
	b[5] = digits[o&0xF]
	return string(b)
}

// WellKnownEntry names the fixed MFT entry numbers reserved for NTFS
// system metadata files, carried over from the original reference
// implementation's SYSTEM_FILES table.
type WellKnownEntry uint64

const (
	EntryMFT        WellKnownEntry = 0
	EntryMFTMirr    WellKnownEntry = 1
	EntryLogFile    WellKnownEntry = 2
	EntryVolume     WellKnownEntry = 3
	EntryAttrDef    WellKnownEntry = 4
	EntryRoot       WellKnownEntry = 5
	EntryBitmap     WellKnownEntry = 6
	EntryBoot       WellKnownEntry = 7
	EntryBadClus    WellKnownEntry = 8
	EntrySecure     WellKnownEntry = 9
	EntryUpCase     WellKnownEntry = 10
	EntryExtend     WellKnownEntry = 11
)
