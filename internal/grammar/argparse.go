package grammar

// parseArgValues runs steps 2-4 of §4.1 over the raw argument tokens: decode
// the per-argument escape substitutes, substitute `$VAR_*` references, then
// `{expression}` arithmetic. The `slash=`/`semicolon=` tokens themselves are
// consumed here and not emitted into the returned bag.
func parseArgValues(rawArgs []string, lookup VarLookup) (values map[string]string, missing []string, err error) {
	tokens := findEscapeTokens(rawArgs)
	values = make(map[string]string, len(rawArgs))
	seenMissing := make(map[string]bool)

	for _, raw := range rawArgs {
		key, rawValue, hasValue, ok := splitRawArg(raw)
		if !ok {
			continue
		}
		if key == "slash" || key == "semicolon" {
			continue
		}
		if !hasValue {
			values[key] = "" // bare flag, resolved to "true" by entities.Attrs.Bool
			continue
		}

		decoded := decodeValue(rawValue, tokens)

		substituted, miss, varsOK := substituteVars(decoded, lookup)
		if !varsOK {
			for _, name := range miss {
				if !seenMissing[name] {
					seenMissing[name] = true
					missing = append(missing, name)
				}
			}
			continue
		}

		evaluated, exprErr := substituteExprs(substituted)
		if exprErr != nil {
			return nil, nil, exprErr
		}
		values[key] = evaluated
	}

	if len(missing) > 0 {
		return nil, missing, nil
	}
	return values, nil, nil
}
