/*
Package config loads rewriterc run configurations.

	        +------------------+
	        |  .rewriterc.hcl  |
	        |  .yaml / .json   |
	        +--------+---------+
	                 |
	      +----------+----------+
	      |          |          |
	 +----+---+ +----+---+ +----+---+
	 |  HCL   | |  YAML  | |  JSON  |
	 | Parser | | Parser | | Parser |
	 +----+---+ +----+---+ +----+---+
	      |          |          |
	      +----------+----------+
	                 |
	          +------+------+
	          |   Config    |
	          | roots,rules |
	          | presets,... |
	          +------+------+
	                 |
	          +------+------+
	          |  RuleSet    |
	          +-------------+

🎯 Purpose:
- Parses a config file in any registered format
- Resolves roots and the verify directory against the config's directory
- Expands presets into rule specs ahead of the config's own rules

🔄 Flow:
1. Read picks a Parser by file name and decodes the file
2. Relative paths are made absolute
3. Callers may layer flags on top
4. Validate compiles the final RuleSet

📝 HCL configs can reference ${config_dir} and ${env.NAME}. A bare
.rewriterc file is tried as YAML first and then as HCL.
*/
package config
