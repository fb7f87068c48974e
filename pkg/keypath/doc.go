/*
Package keypath indexes the nested keys of block-style YAML files.

	+------------------+      +-----------+      +-----------+
	| file content     | ---> |  Split    | ---> |  Extract  |
	| (many documents) |      | (--- sep) |      | (per doc) |
	+------------------+      +-----------+      +-----+-----+
	                                                   |
	                                             +-----v-----+
	                                             | FileIndex |
	                                             +-----------+

🎯 Purpose:
- Turn every mapping key into a dotted path ("server.ssl.enabled")
- Remember where each key lives (1-based line and column, file-global)
- Keep going when one document of a stream fails to parse

📝 Positions:
Positions come from the yaml.v3 key nodes by default (LocateNode). LocateScan
searches the document lines for the first "key:" instead, which can be shadowed by
an earlier key with the same name; keys it cannot find keep Unresolved (-1) for
both line and column.
*/
package keypath
