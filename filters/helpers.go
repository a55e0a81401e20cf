package filters

import "github.com/wudi/pdfaparser/ir/raw"

var abbreviations = map[string]string{
	"Fl":  "FlateDecode",
	"LZW": "LZWDecode",
	"A85": "ASCII85Decode",
	"AHx": "ASCIIHexDecode",
	"RL":  "RunLengthDecode",
	"CCF": "CCITTFaxDecode",
	"DCT": "DCTDecode",
}

// ExtractFilters reads Filter and DecodeParms entries from a stream dictionary.
// Abbreviated filter names used by inline images are expanded.
func ExtractFilters(dict raw.Dictionary) ([]string, []raw.Dictionary) {
	var names []string
	var params []raw.Dictionary

	filterObj, ok := dict.Get(raw.NameLiteral("Filter"))
	if !ok {
		return names, params
	}

	switch f := filterObj.(type) {
	case raw.Name:
		names = append(names, expand(f.Value()))
	case *raw.ArrayObj:
		for _, item := range f.Items {
			if n, ok := item.(raw.Name); ok {
				names = append(names, expand(n.Value()))
			}
		}
	}

	if len(names) > 0 {
		if pObj, ok := dict.Get(raw.NameLiteral("DecodeParms")); ok {
			switch p := pObj.(type) {
			case raw.Dictionary:
				params = append(params, p)
			case *raw.ArrayObj:
				for _, item := range p.Items {
					d, _ := item.(raw.Dictionary)
					params = append(params, d)
				}
			}
		}
	}

	return names, params
}

func expand(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}
